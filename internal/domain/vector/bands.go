package vector

import "fmt"

// Image band widths. The five bands emulate a coarse-to-fine visual
// hierarchy and concatenate to exactly ImageDims slots.
const (
	ImageEdgeBand      = 64  // per-cell edge strength on an 8x8 grid
	ImageOrientBand    = 36  // edge-orientation histogram, 5-degree bins
	ImageColorBand     = 128 // 3x32 RGB histograms + 32 pattern placeholders
	ImageStructureBand = 128 // structural placeholders
	ImageSemanticBand  = 156 // semantic placeholders
)

// ImageFeatures is the typed view over the 512-slot image buffer.
type ImageFeatures struct {
	Edge      [ImageEdgeBand]float32
	Orient    [ImageOrientBand]float32
	Color     [ImageColorBand]float32
	Structure [ImageStructureBand]float32
	Semantic  [ImageSemanticBand]float32
}

// Pack flattens the bands into a 512-dim vector.
func (f *ImageFeatures) Pack() Vector {
	out := make(Vector, 0, ImageDims)
	out = append(out, f.Edge[:]...)
	out = append(out, f.Orient[:]...)
	out = append(out, f.Color[:]...)
	out = append(out, f.Structure[:]...)
	out = append(out, f.Semantic[:]...)
	return out
}

// UnpackImage reconstructs the banded view from a flat 512-dim vector.
func UnpackImage(v Vector) (*ImageFeatures, error) {
	if len(v) != ImageDims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadDimension, len(v), ImageDims)
	}
	var f ImageFeatures
	i := 0
	i += copy(f.Edge[:], v[i:])
	i += copy(f.Orient[:], v[i:])
	i += copy(f.Color[:], v[i:])
	i += copy(f.Structure[:], v[i:])
	copy(f.Semantic[:], v[i:])
	return &f, nil
}

// Temporal band width. Three bands of ten features plus two reserved slots.
const TemporalBand = 10

// TemporalFeatures is the typed view over the 32-slot temporal buffer.
type TemporalFeatures struct {
	Learning [TemporalBand]float32 // learning metrics
	Fatigue  [TemporalBand]float32 // fatigue indicators
	Style    [TemporalBand]float32 // style-evolution indicators
	Reserved [2]float32
}

// Pack flattens the bands into a 32-dim vector.
func (f *TemporalFeatures) Pack() Vector {
	out := make(Vector, 0, TemporalDims)
	out = append(out, f.Learning[:]...)
	out = append(out, f.Fatigue[:]...)
	out = append(out, f.Style[:]...)
	out = append(out, f.Reserved[:]...)
	return out
}

// UnpackTemporal reconstructs the banded view from a flat 32-dim vector.
func UnpackTemporal(v Vector) (*TemporalFeatures, error) {
	if len(v) != TemporalDims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadDimension, len(v), TemporalDims)
	}
	var f TemporalFeatures
	i := 0
	i += copy(f.Learning[:], v[i:])
	i += copy(f.Fatigue[:], v[i:])
	i += copy(f.Style[:], v[i:])
	copy(f.Reserved[:], v[i:])
	return &f, nil
}
