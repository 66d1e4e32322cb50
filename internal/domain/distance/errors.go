package distance

import "errors"

// Sentinel kinds for distance errors.
var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrEmptyInput        = errors.New("empty input")
	ErrUnknownMetric     = errors.New("unknown metric")
)
