package blend

import "errors"

// Sentinel kinds for blending errors.
var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrEmptyInput        = errors.New("empty blend input")
	ErrBadWeights        = errors.New("invalid blend weights")
)
