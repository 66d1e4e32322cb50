// Package vector defines the fixed-dimension feature buffers shared by all
// DNA tiers, plus typed views that give encoders compile-time-checked field
// access while keeping the flat float32 layout as the wire and storage
// representation.
package vector

import (
	"fmt"
	"math"
)

// Fixed per-tier dimensions. These never vary for a given tier.
const (
	StrokeDims   = 30
	ImageDims    = 512
	TemporalDims = 32
)

// Vector is a fixed-length sequence of 32-bit floats.
type Vector []float32

// New allocates a zeroed vector of the given dimension.
func New(dim int) Vector {
	return make(Vector, dim)
}

// Validate checks that the vector has exactly dim slots and every slot is a
// finite number.
func (v Vector) Validate(dim int) error {
	if len(v) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrBadDimension, len(v), dim)
	}
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w: slot %d is %v", ErrNonFinite, i, f)
		}
	}
	return nil
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Float64s converts to float64 for math-heavy consumers.
func (v Vector) Float64s() []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// FromFloat64s builds a vector from float64 values.
func FromFloat64s(xs []float64) Vector {
	out := make(Vector, len(xs))
	for i, x := range xs {
		out[i] = float32(x)
	}
	return out
}
