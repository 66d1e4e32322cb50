package projection

import "errors"

// Sentinel kinds for projection errors.
var (
	ErrEmptyBatch        = errors.New("empty projection batch")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
