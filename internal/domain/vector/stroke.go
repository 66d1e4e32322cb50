package vector

import "fmt"

// StrokeFeatures is the typed view over the 30-slot stroke buffer. Encoders
// fill the named fields and Pack to the flat representation; consumers that
// need named access Unpack. Field order here is the buffer's index order and
// must never change: persisted vectors depend on it.
type StrokeFeatures struct {
	// Geometric
	MeanX       float32
	MeanY       float32
	Width       float32
	Height      float32
	Aspect      float32
	Area        float32
	Perimeter   float32
	Compactness float32
	Elongation  float32
	Orientation float32

	// Statistical
	VarX     float32
	VarY     float32
	SkewX    float32
	SkewY    float32
	KurtX    float32
	KurtY    float32
	Density  float32
	CurvMean float32
	CurvStd  float32
	Corners  float32

	// Dynamic
	VelMean      float32
	VelMax       float32
	AccMean      float32
	AccMax       float32
	PressureMean float32
	PressureStd  float32
	TiltMean     float32
	TwistMean    float32
	Duration     float32
	Pauses       float32
}

// Pack flattens the features into a 30-dim vector in fixed index order.
func (f *StrokeFeatures) Pack() Vector {
	return Vector{
		f.MeanX, f.MeanY, f.Width, f.Height, f.Aspect,
		f.Area, f.Perimeter, f.Compactness, f.Elongation, f.Orientation,
		f.VarX, f.VarY, f.SkewX, f.SkewY, f.KurtX,
		f.KurtY, f.Density, f.CurvMean, f.CurvStd, f.Corners,
		f.VelMean, f.VelMax, f.AccMean, f.AccMax, f.PressureMean,
		f.PressureStd, f.TiltMean, f.TwistMean, f.Duration, f.Pauses,
	}
}

// UnpackStroke reconstructs the typed view from a flat 30-dim vector.
func UnpackStroke(v Vector) (*StrokeFeatures, error) {
	if len(v) != StrokeDims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadDimension, len(v), StrokeDims)
	}
	return &StrokeFeatures{
		MeanX: v[0], MeanY: v[1], Width: v[2], Height: v[3], Aspect: v[4],
		Area: v[5], Perimeter: v[6], Compactness: v[7], Elongation: v[8], Orientation: v[9],
		VarX: v[10], VarY: v[11], SkewX: v[12], SkewY: v[13], KurtX: v[14],
		KurtY: v[15], Density: v[16], CurvMean: v[17], CurvStd: v[18], Corners: v[19],
		VelMean: v[20], VelMax: v[21], AccMean: v[22], AccMax: v[23], PressureMean: v[24],
		PressureStd: v[25], TiltMean: v[26], TwistMean: v[27], Duration: v[28], Pauses: v[29],
	}, nil
}
