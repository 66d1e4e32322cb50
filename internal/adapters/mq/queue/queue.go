// Package queue provides the bounded FIFO buffer between the hot path and
// the cold-path workers. Enqueue never blocks: when the queue is full the
// task is rejected and the caller decides whether to drop or retry.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/strokeforge/dna/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// Tier names the cold-path encoder a task targets.
type Tier string

const (
	TierImage    Tier = "image"
	TierTemporal Tier = "temporal"
)

// Task is one unit of cold-path work. Run carries the closure a worker
// executes; the result travels back through the submitting future, not the
// queue.
type Task struct {
	ID         string
	SessionID  string
	Tier       Tier
	EnqueuedAt time.Time
	Run        func(ctx context.Context) (any, error)
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task. It returns false when the queue is full or
	// closed and the task was not accepted.
	Enqueue(ctx context.Context, t Task) bool

	// Dequeue returns a channel that receives tasks as they become
	// available. The channel closes when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Task

	// Len returns the current number of queued tasks.
	Len(ctx context.Context) int

	// Close stops accepting tasks. Already-queued tasks remain available
	// to consumers.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a task without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejection()
		return false
	}

	// Checked outside the select: a ready Done case and a free buffer slot
	// would otherwise race, letting a cancelled enqueue through.
	if ctx.Err() != nil {
		metrics.RecordQueueRejection()
		return false
	}

	select {
	case q.tasks <- t:
		metrics.RecordQueueEnqueue()
		q.observeDepth()
		return true
	default:
		metrics.RecordQueueRejection()
		return false
	}
}

// Dequeue returns a channel that receives tasks until the queue closes or
// ctx is cancelled.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Task {
	out := make(chan Task)
	go func() {
		defer close(out)
		for t := range q.tasks {
			select {
			case out <- t:
				metrics.RecordQueueDequeue()
				q.observeDepth()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued tasks.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.tasks)
	q.observeDepth()
	return size
}

// Close stops accepting tasks and lets consumers drain the remainder.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observeDepth() {
	size := len(q.tasks)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
