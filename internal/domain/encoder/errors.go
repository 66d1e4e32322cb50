package encoder

import "errors"

// Sentinel kinds for encoding errors.
var (
	// ErrInvalidInput rejects empty or degenerate input instead of emitting
	// an ill-defined vector.
	ErrInvalidInput = errors.New("invalid encoder input")
)
