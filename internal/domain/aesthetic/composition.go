package aesthetic

import "github.com/strokeforge/dna/internal/domain/model"

// Blend weights of the composition score.
const (
	centroidWeight = 0.6
	quadrantWeight = 0.4
)

// compositionBalance blends the proximity of the stroke centroid to the
// canvas center with how evenly strokes spread across the four quadrants.
// Strokes without normalized bounds are skipped.
func (r *Regulator) compositionBalance(strokes []*model.StrokeDNA) float64 {
	var cx, cy float64
	var quad [4]int
	n := 0
	for _, s := range strokes {
		if s == nil || s.Bounds == nil {
			continue
		}
		x := s.Bounds.X + s.Bounds.Width/2
		y := s.Bounds.Y + s.Bounds.Height/2
		cx += x
		cy += y
		quad[quadrant(x, y, r.refWidth, r.refHeight)]++
		n++
	}
	if n == 0 {
		return neutralScore
	}
	cx /= float64(n)
	cy /= float64(n)

	// Centroid proximity: 1 at dead center, 0 at a canvas corner.
	dx := (cx - r.refWidth/2) / (r.refWidth / 2)
	dy := (cy - r.refHeight/2) / (r.refHeight / 2)
	proximity := clamp01(1 - (abs(dx)+abs(dy))/2)

	// Quadrant evenness: 1 when each quadrant holds a quarter of the
	// strokes, 0 when everything lands in one.
	var deviation float64
	for _, q := range quad {
		deviation += abs(float64(q)/float64(n) - 0.25)
	}
	evenness := clamp01(1 - deviation/1.5)

	return centroidWeight*proximity + quadrantWeight*evenness
}

func quadrant(x, y, w, h float64) int {
	q := 0
	if x >= w/2 {
		q++
	}
	if y >= h/2 {
		q += 2
	}
	return q
}
