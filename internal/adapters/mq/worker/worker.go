// Package worker runs cold-path encoding tasks on a fixed pool of
// background goroutines. Each submitted task resolves a future; completion
// order across tasks is not guaranteed. A panicking task rejects its own
// future and the crashed worker is replaced, so one bad task never takes
// the pool down with it.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/strokeforge/dna/internal/adapters/mq/queue"
	"github.com/strokeforge/dna/internal/domain/encoder"
	"github.com/strokeforge/dna/pkg/logger"
	"github.com/strokeforge/dna/pkg/metrics"
)

// Default pool configuration constants.
const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Future resolves to one cold-path task's result. Wait blocks until the
// task completes, fails, or ctx is cancelled.
type Future struct {
	done   chan struct{}
	result any
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Wait blocks for the task outcome.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done exposes the completion signal for select loops.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome after Done is closed. Calling it earlier races
// with the resolving worker.
func (f *Future) Result() (any, error) { return f.result, f.err }

func (f *Future) resolve(v any) {
	f.result = v
	close(f.done)
}

func (f *Future) reject(err error) {
	f.err = err
	close(f.done)
}

// pending couples a queued task with its future.
type pending struct {
	task   queue.Task
	future *Future
}

// Pool owns N persistent workers draining a shared bounded queue.
type Pool struct {
	queue       *queue.InMemoryQueue
	workerCount int
	coldTimeout time.Duration
	logger      logger.Logger

	tasks <-chan queue.Task

	mu      sync.Mutex
	futures map[string]*Future
	busy    int
	closed  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithWorkerCount sets the number of workers.
func WithWorkerCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workerCount = n
		}
	}
}

// WithQueue sets the backing task queue.
func WithQueue(q *queue.InMemoryQueue) Option {
	return func(p *Pool) {
		if q != nil {
			p.queue = q
		}
	}
}

// WithColdTimeout bounds each task's execution. Zero disables enforcement.
func WithColdTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d >= 0 {
			p.coldTimeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool creates a pool with the default two workers and an unstarted
// state; call Start before submitting.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		workerCount: defaultWorkerCount,
		futures:     make(map[string]*Future),
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue == nil {
		p.queue = queue.NewInMemoryQueue()
	}
	return p
}

// Start launches the workers. The pool runs until Shutdown or ctx ends.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.tasks = p.queue.Dequeue(runCtx)

	metrics.UpdateWorkerActiveCount(p.workerCount)
	metrics.UpdateWorkerBusyCount(0)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.runWorker(runCtx, i)
	}
}

// Submit queues a task and returns its future. The future rejects with
// ErrQueueFull immediately when the queue cannot take the task, and with
// ErrPoolClosed after shutdown.
func (p *Pool) Submit(ctx context.Context, t queue.Task) *Future {
	f := newFuture()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		f.reject(fmt.Errorf("%w: task %s", ErrPoolClosed, t.ID))
		return f
	}
	p.futures[t.ID] = f
	p.mu.Unlock()

	if !p.queue.Enqueue(ctx, t) {
		p.forget(t.ID)
		f.reject(fmt.Errorf("%w: task %s", ErrQueueFull, t.ID))
		return f
	}
	return f
}

// runWorker drains tasks until the context ends or the queue closes. On a
// panic the goroutine exits and a replacement is launched so the pool keeps
// its configured width.
func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()

	var current *pending
	defer func() {
		if r := recover(); r != nil {
			if current != nil {
				metrics.RecordTaskFailure()
				metrics.RecordColdTask(string(current.task.Tier), "panic")
				current.future.reject(fmt.Errorf("%w: task %s: %v", ErrWorkerFailure, current.task.ID, r))
				p.setBusy(-1)
			}
			p.logger.Error(ctx, "worker crashed, replacing",
				logger.Int("worker_id", id),
				logger.Any("panic", r),
			)
			p.wg.Add(1)
			go p.runWorker(ctx, id)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			f := p.forget(t.ID)
			if f == nil {
				continue
			}
			current = &pending{task: t, future: f}
			p.setBusy(1)
			p.execute(ctx, current)
			p.setBusy(-1)
			current = nil
		}
	}
}

// execute runs one task on the cold path, with the configured timeout when
// one is set. Panics escape to runWorker's recovery.
func (p *Pool) execute(ctx context.Context, pd *pending) {
	taskCtx := encoder.ColdContext(ctx)
	if p.coldTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, p.coldTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := pd.task.Run(taskCtx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	tier := string(pd.task.Tier)
	metrics.RecordColdLatency(tier, elapsed)
	if err != nil {
		metrics.RecordColdTask(tier, "error")
		metrics.RecordTaskFailure()
		p.logger.Warn(ctx, "cold task failed",
			logger.String("task_id", pd.task.ID),
			logger.String("tier", tier),
			logger.Error(err),
		)
		pd.future.reject(err)
		return
	}
	metrics.RecordColdTask(tier, "ok")
	pd.future.resolve(result)
}

// Shutdown closes the queue, waits for in-flight and queued tasks to
// finish, and rejects anything still unresolved.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	select {
	case <-finished:
	case <-shutdownCtx.Done():
		p.logger.Warn(ctx, "pool shutdown timed out")
	}

	if p.cancel != nil {
		p.cancel()
	}

	p.mu.Lock()
	for id, f := range p.futures {
		f.reject(fmt.Errorf("%w: task %s", ErrPoolClosed, id))
		delete(p.futures, id)
	}
	p.mu.Unlock()

	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerBusyCount(0)
	return nil
}

// Busy reports how many workers are executing a task right now.
func (p *Pool) Busy() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

func (p *Pool) setBusy(delta int) {
	p.mu.Lock()
	p.busy += delta
	busy := p.busy
	p.mu.Unlock()
	metrics.UpdateWorkerBusyCount(busy)
}

func (p *Pool) forget(id string) *Future {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.futures[id]
	delete(p.futures, id)
	return f
}
