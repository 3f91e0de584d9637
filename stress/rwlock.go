package stress

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/lhecker/threading/async"
	"github.com/lhecker/threading/atomics"
)

func (rc *runContext) runRWLock(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, rc.scenario.Duration)
	defer cancel()

	var (
		lock    async.ReaderWriterLock
		readers atomics.Long
		writers atomics.Long
	)

	eg := spawn(runCtx, rc.scenario.Parallelism, func(ctx context.Context) error {
		read := rand.Float64() < rc.scenario.ReadRatio

		wait := lock.WriteLock
		if read {
			wait = lock.ReadLock
		}

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

		if read {
			n := readers.Increment()
			defer readers.Decrement()

			rc.maxObserved.Max(n)
			if w := writers.Value(); w != 0 {
				return rc.violation("reader admitted while %d writers hold the lock", w)
			}
		} else {
			n := writers.Increment()
			defer writers.Decrement()

			if n != 1 {
				return rc.violation("%d concurrent writers", n)
			}
			if rd := readers.Value(); rd != 0 {
				return rc.violation("writer admitted while %d readers hold the lock", rd)
			}
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

	held, writing, pendingReaders, pendingWriters := lock.State()
	if held != 0 || writing || pendingReaders != 0 || pendingWriters != 0 {
		rc.violation("lock not free after the run: readers=%d writing=%t pendingReaders=%d pendingWriters=%d",
			held, writing, pendingReaders, pendingWriters)
	}
	return nil
}

func isViolation(err error) bool {
	return errors.Is(err, ErrViolation)
}
