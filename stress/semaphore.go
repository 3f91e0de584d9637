package stress

import (
	"context"

	"github.com/lhecker/threading/async"
)

func (rc *runContext) runSemaphore(ctx context.Context) error {
	sem := async.NewLifoSemaphore(rc.scenario.Capacity)

	return rc.runPermits(ctx, sem.Wait, func() error {
		if n := sem.CurrentCount(); n != rc.scenario.Capacity {
			return rc.violation("%d permits left after the run, expected %d", n, rc.scenario.Capacity)
		}
		if n := sem.CurrentQueue(); n != 0 {
			return rc.violation("%d waiters left in the queue", n)
		}
		return nil
	})
}

func (rc *runContext) runLock(ctx context.Context) error {
	lock := async.NewLock()

	return rc.runPermits(ctx, lock.Lock, func() error {
		if lock.IsLocked() {
			return rc.violation("lock still held after the run")
		}
		if n := lock.QueueLength(); n != 0 {
			return rc.violation("%d waiters left in the queue", n)
		}
		return nil
	})
}

// runPermits has Parallelism workers contend for Capacity permits and checks
// that no more than Capacity of them ever hold one at the same time.
func (rc *runContext) runPermits(ctx context.Context, wait func(context.Context) (async.Releaser, error), check func() error) error {
	runCtx, cancel := context.WithTimeout(ctx, rc.scenario.Duration)
	defer cancel()

	capacity := int64(rc.scenario.Capacity)

	eg := spawn(runCtx, rc.scenario.Parallelism, func(ctx context.Context) error {
		r, err := rc.acquire(ctx, wait)
		if err != nil {
			if isDone(ctx, err) {
				return nil
			}
			return err
		}
		if r == nil {
			return nil
		}
		defer r.Release()

		n := rc.inFlight.Increment()
		defer rc.inFlight.Decrement()

		rc.maxObserved.Max(n)
		if n > capacity {
			return rc.violation("%d concurrent holders with capacity %d", n, capacity)
		}

		rc.payload()
		rc.operations.Increment()
		return nil
	})

	if err := eg.Wait(); err != nil && !isViolation(err) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Violations are already recorded; the return value only stops the run.
	_ = check()
	return nil
}
