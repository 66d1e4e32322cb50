package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound           = errors.New("session not found")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	ErrUnknownBackend     = errors.New("unknown storage backend")
	ErrNotInitialized     = errors.New("storage not initialized")
)
