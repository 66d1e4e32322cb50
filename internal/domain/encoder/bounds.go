package encoder

import (
	"math"

	"github.com/strokeforge/dna/internal/domain/model"
)

// Default reference resolution for scale-invariant normalization.
const (
	DefaultReferenceWidth  = 1920.0
	DefaultReferenceHeight = 1080.0
)

// Bounds normalizes stroke coordinates to a reference canvas with a single
// uniform scale factor, so encodings are comparable across differently-sized
// canvases.
type Bounds struct {
	refW float64
	refH float64
}

// NewBounds creates a normalizer for the given reference resolution.
// Non-positive values fall back to the defaults.
func NewBounds(refW, refH float64) *Bounds {
	if refW <= 0 {
		refW = DefaultReferenceWidth
	}
	if refH <= 0 {
		refH = DefaultReferenceHeight
	}
	return &Bounds{refW: refW, refH: refH}
}

// Scale returns the uniform scale factor for a canvas.
func (b *Bounds) Scale(canvasW, canvasH float64) float64 {
	if canvasW <= 0 || canvasH <= 0 {
		return 1
	}
	return math.Min(b.refW/canvasW, b.refH/canvasH)
}

// Normalize scales the points into reference space and reports the
// normalized bounding box. The input slice is never mutated.
func (b *Bounds) Normalize(points []model.Point, canvasW, canvasH float64) ([]model.Point, model.NormalizedBounds) {
	scale := b.Scale(canvasW, canvasH)

	out := make([]model.Point, len(points))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range points {
		p.X *= scale
		p.Y *= scale
		out[i] = p
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	nb := model.NormalizedBounds{Scale: scale}
	if len(points) > 0 {
		nb.X = minX
		nb.Y = minY
		nb.Width = maxX - minX
		nb.Height = maxY - minY
	}
	return out, nb
}
