package worker

import "errors"

// Sentinel kinds for pool errors.
var (
	ErrPoolClosed    = errors.New("worker pool closed")
	ErrQueueFull     = errors.New("task queue full")
	ErrWorkerFailure = errors.New("worker failure")
)
