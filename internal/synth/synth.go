// Package synth generates deterministic synthetic drawing input: shaped
// strokes with pressure and timing profiles, and procedural canvases. It
// backs the demo binary and exercises the full pipeline without a capture
// surface.
package synth

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/strokeforge/dna/internal/domain/model"
	"github.com/strokeforge/dna/pkg/rng"
)

// Shape selects the stroke geometry.
type Shape string

const (
	ShapeLine   Shape = "line"
	ShapeArc    Shape = "arc"
	ShapeSpiral Shape = "spiral"
	ShapeZigzag Shape = "zigzag"
)

// Generation constants.
const (
	defaultCanvasW = 1920.0
	defaultCanvasH = 1080.0
	baseDeltaMS    = 16.0
	jitterMS       = 6.0
	pauseChance    = 0.05
	pauseMS        = 180.0
	zigzagSegments = 6
	spiralTurns    = 2.5
)

var (
	tools  = []string{"pen", "brush", "marker", "pencil"}
	colors = []string{"#202020", "#1d4ed8", "#dc2626", "#15803d", "#a16207"}
)

// Generator produces reproducible synthetic input. Identical seed and call
// sequence yield identical strokes.
type Generator struct {
	src     *rng.Source
	strokes int
}

// New creates a Generator from a seed.
func New(seed uint32) *Generator {
	return &Generator{src: rng.New(seed)}
}

// Stroke produces one shaped stroke inside the default canvas. Point count
// below 2 is raised to 2.
func (g *Generator) Stroke(sessionID string, shape Shape, points int) *model.StrokeInput {
	if points < 2 {
		points = 2
	}
	g.strokes++

	cx := g.src.Float64Range(0.2, 0.8) * defaultCanvasW
	cy := g.src.Float64Range(0.2, 0.8) * defaultCanvasH
	span := g.src.Float64Range(60, 320)
	phase := g.src.Float64Range(0, 2*math.Pi)

	pts := make([]model.Point, points)
	t := 0.0
	basePressure := g.src.Float64Range(0.3, 0.7)
	for i := range pts {
		u := float64(i) / float64(points-1)
		x, y := shapePoint(shape, u, cx, cy, span, phase)

		t += baseDeltaMS + g.src.Float64Range(-jitterMS, jitterMS)
		if i > 0 && g.src.Bool(pauseChance) {
			t += pauseMS
		}

		// Bell-shaped pressure over the stroke with light noise.
		pressure := basePressure + 0.3*math.Sin(u*math.Pi) + g.src.Float64Range(-0.05, 0.05)
		pts[i] = model.Point{
			X:        clampRange(x, 0, defaultCanvasW),
			Y:        clampRange(y, 0, defaultCanvasH),
			Pressure: clampRange(pressure, 0.05, 1),
			Tilt:     g.src.Float64Range(0.6, 1.0),
			Twist:    g.src.Float64Range(-0.2, 0.2),
			TimeMS:   t,
		}
	}

	return &model.StrokeInput{
		StrokeID:     fmt.Sprintf("%s-stroke-%d", sessionID, g.strokes),
		SessionID:    sessionID,
		Points:       pts,
		Tool:         tools[g.src.IntN(len(tools))],
		Color:        colors[g.src.IntN(len(colors))],
		BrushSize:    g.src.Float64Range(2, 24),
		CanvasWidth:  defaultCanvasW,
		CanvasHeight: defaultCanvasH,
	}
}

// shapePoint maps a parameter u in [0,1] onto the shape's path.
func shapePoint(shape Shape, u, cx, cy, span, phase float64) (x, y float64) {
	switch shape {
	case ShapeArc:
		a := phase + u*math.Pi
		return cx + span*math.Cos(a), cy + span*math.Sin(a)
	case ShapeSpiral:
		a := phase + u*spiralTurns*2*math.Pi
		r := span * u
		return cx + r*math.Cos(a), cy + r*math.Sin(a)
	case ShapeZigzag:
		seg := math.Mod(u*zigzagSegments, 1)
		if int(u*zigzagSegments)%2 == 1 {
			seg = 1 - seg
		}
		return cx - span + 2*span*u, cy + span*(seg-0.5)
	default: // line
		a := phase
		return cx + span*(2*u-1)*math.Cos(a), cy + span*(2*u-1)*math.Sin(a)
	}
}

// Canvas renders a procedural two-tone canvas with soft blobs, enough
// structure for the image encoder to find edges and dominant colors.
func (g *Generator) Canvas(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := color.RGBA{R: 245, G: 242, B: 235, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, bg)
		}
	}

	blobs := 3 + g.src.IntN(4)
	for b := 0; b < blobs; b++ {
		cx := g.src.Float64Range(0.1, 0.9) * float64(w)
		cy := g.src.Float64Range(0.1, 0.9) * float64(h)
		r := g.src.Float64Range(0.05, 0.25) * float64(w)
		c := color.RGBA{
			R: uint8(g.src.IntN(200)),
			G: uint8(g.src.IntN(200)),
			B: uint8(g.src.IntN(200)),
			A: 255,
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dx, dy := float64(x)-cx, float64(y)-cy
				if dx*dx+dy*dy <= r*r {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
	return img
}

// NextShape cycles through the shapes pseudo-randomly.
func (g *Generator) NextShape() Shape {
	shapes := []Shape{ShapeLine, ShapeArc, ShapeSpiral, ShapeZigzag}
	return shapes[g.src.IntN(len(shapes))]
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
