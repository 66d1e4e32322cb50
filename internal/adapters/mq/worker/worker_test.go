package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/strokeforge/dna/internal/adapters/mq/queue"
	"github.com/strokeforge/dna/internal/adapters/mq/worker"
)

func task(id string, run func(ctx context.Context) (any, error)) queue.Task {
	return queue.Task{ID: id, Tier: queue.TierImage, EnqueuedAt: time.Now(), Run: run}
}

func TestPoolResolvesAllTasks(t *testing.T) {
	Convey("Given 2 workers and 20 tasks", t, func() {
		ctx := context.Background()
		pool := worker.NewPool(worker.WithWorkerCount(2), worker.WithQueue(queue.NewInMemoryQueue(queue.WithCapacity(64))))
		pool.Start(ctx)
		defer func() { So(pool.Shutdown(ctx), ShouldBeNil) }()

		var concurrent, peak int64
		futures := make([]*worker.Future, 0, 20)
		for i := 0; i < 20; i++ {
			i := i
			futures = append(futures, pool.Submit(ctx, task(fmt.Sprintf("t%d", i), func(ctx context.Context) (any, error) {
				n := atomic.AddInt64(&concurrent, 1)
				for {
					old := atomic.LoadInt64(&peak)
					if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt64(&concurrent, -1)
				return i, nil
			})))
		}

		Convey("All futures resolve and concurrency never exceeds the pool size", func() {
			for i, f := range futures {
				v, err := f.Wait(ctx)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, i)
			}
			So(atomic.LoadInt64(&peak), ShouldBeLessThanOrEqualTo, 2)
		})
	})
}

func TestPoolDefaultConstruction(t *testing.T) {
	Convey("Given a pool built with no options and no global logger wiring", t, func() {
		ctx := context.Background()

		var pool *worker.Pool
		So(func() { pool = worker.NewPool() }, ShouldNotPanic)
		pool.Start(ctx)
		defer pool.Shutdown(ctx)

		Convey("It serves tasks with its defaults", func() {
			f := pool.Submit(ctx, task("plain", func(ctx context.Context) (any, error) {
				return "ok", nil
			}))
			v, err := f.Wait(ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "ok")
		})
	})
}

func TestPoolPanicIsolation(t *testing.T) {
	Convey("Given a task that panics", t, func() {
		ctx := context.Background()
		pool := worker.NewPool(worker.WithWorkerCount(1))
		pool.Start(ctx)
		defer pool.Shutdown(ctx)

		bad := pool.Submit(ctx, task("bad", func(ctx context.Context) (any, error) {
			panic("boom")
		}))

		Convey("Its future rejects with a worker failure", func() {
			_, err := bad.Wait(ctx)
			So(errors.Is(err, worker.ErrWorkerFailure), ShouldBeTrue)
		})

		Convey("The replacement worker keeps serving", func() {
			_, _ = bad.Wait(ctx)
			good := pool.Submit(ctx, task("good", func(ctx context.Context) (any, error) {
				return "ok", nil
			}))
			v, err := good.Wait(ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "ok")
		})
	})
}

func TestPoolErrorPropagation(t *testing.T) {
	Convey("Given a failing task among healthy siblings", t, func() {
		ctx := context.Background()
		pool := worker.NewPool(worker.WithWorkerCount(2))
		pool.Start(ctx)
		defer pool.Shutdown(ctx)

		wantErr := errors.New("encode failed")
		failing := pool.Submit(ctx, task("fail", func(ctx context.Context) (any, error) {
			return nil, wantErr
		}))
		healthy := pool.Submit(ctx, task("ok", func(ctx context.Context) (any, error) {
			return 42, nil
		}))

		Convey("Only the failing future rejects", func() {
			_, err := failing.Wait(ctx)
			So(errors.Is(err, wantErr), ShouldBeTrue)

			v, err := healthy.Wait(ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 42)
		})
	})
}

func TestPoolColdTimeout(t *testing.T) {
	Convey("Given a pool with a 20ms cold timeout", t, func() {
		ctx := context.Background()
		pool := worker.NewPool(worker.WithWorkerCount(1), worker.WithColdTimeout(20*time.Millisecond))
		pool.Start(ctx)
		defer pool.Shutdown(ctx)

		Convey("A task that honors its context is cancelled", func() {
			f := pool.Submit(ctx, task("slow", func(ctx context.Context) (any, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Second):
					return "done", nil
				}
			}))
			_, err := f.Wait(ctx)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("Task contexts carry a deadline", func() {
			f := pool.Submit(ctx, task("probe", func(ctx context.Context) (any, error) {
				_, ok := ctx.Deadline()
				return ok, nil
			}))
			v, err := f.Wait(ctx)
			So(err, ShouldBeNil)
			So(v, ShouldBeTrue)
		})
	})
}

func TestPoolRejections(t *testing.T) {
	Convey("Given pool edge conditions", t, func() {
		ctx := context.Background()

		Convey("A full queue rejects the submission immediately", func() {
			// One worker blocked, capacity 1 filled, next submit has nowhere to go.
			pool := worker.NewPool(worker.WithWorkerCount(1), worker.WithQueue(queue.NewInMemoryQueue(queue.WithCapacity(1))))
			pool.Start(ctx)
			defer pool.Shutdown(ctx)

			release := make(chan struct{})
			var wg sync.WaitGroup
			wg.Add(1)
			blocker := pool.Submit(ctx, task("blocker", func(ctx context.Context) (any, error) {
				wg.Done()
				<-release
				return nil, nil
			}))
			wg.Wait() // blocker is executing, worker occupied

			// With the worker stuck, at most one task can sit in the
			// dequeue hand-off and one in the buffer; the third must be
			// rejected.
			var accepted []*worker.Future
			var rejected *worker.Future
			for i := 0; i < 3 && rejected == nil; i++ {
				f := pool.Submit(ctx, task(fmt.Sprintf("fill%d", i), func(ctx context.Context) (any, error) { return nil, nil }))
				select {
				case <-f.Done():
					rejected = f
				default:
					accepted = append(accepted, f)
				}
			}
			So(rejected, ShouldNotBeNil)
			_, err := rejected.Wait(ctx)
			So(errors.Is(err, worker.ErrQueueFull), ShouldBeTrue)

			close(release)
			_, err = blocker.Wait(ctx)
			So(err, ShouldBeNil)
			for _, f := range accepted {
				_, err = f.Wait(ctx)
				So(err, ShouldBeNil)
			}
		})

		Convey("Submitting after shutdown rejects with ErrPoolClosed", func() {
			pool := worker.NewPool(worker.WithWorkerCount(1))
			pool.Start(ctx)
			So(pool.Shutdown(ctx), ShouldBeNil)

			f := pool.Submit(ctx, task("late", func(ctx context.Context) (any, error) { return nil, nil }))
			_, err := f.Wait(ctx)
			So(errors.Is(err, worker.ErrPoolClosed), ShouldBeTrue)
		})
	})
}
