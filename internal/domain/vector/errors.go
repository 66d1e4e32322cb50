package vector

import "errors"

// Sentinel kinds for vector validation errors.
var (
	ErrBadDimension = errors.New("vector dimension mismatch")
	ErrNonFinite    = errors.New("vector contains non-finite value")
)
