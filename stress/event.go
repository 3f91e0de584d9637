package stress

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/lhecker/threading/async"
)

// runEvent churns an event with concurrent Set and Reset calls while waiters
// keep waiting on it. Once the churn stops the event is set a final time and
// every waiter has to return within settleTimeout.
func (rc *runContext) runEvent(ctx context.Context) error {
	var ev async.ManualResetEvent

	churnCtx, cancelChurn := context.WithTimeout(ctx, rc.scenario.Duration)
	defer cancelChurn()

	// Not bound to the churn deadline: a lost wakeup has to show up as a hang.
	waitCtx, cancelWaiters := context.WithCancel(ctx)
	defer cancelWaiters()

	churn := spawn(churnCtx, rc.scenario.Setters, func(ctx context.Context) error {
		ev.Set()
		jitter()
		return nil
	})
	for range rc.scenario.Resetters {
		churn.Go(func() error {
			for churnCtx.Err() == nil {
				ev.Reset()
				jitter()
			}
			return nil
		})
	}

	waiters := spawn(waitCtx, rc.scenario.Waiters, func(ctx context.Context) error {
		if churnCtx.Err() != nil {
			<-ctx.Done()
			return nil
		}

		n := rc.inFlight.Increment()
		rc.maxObserved.Max(n)
		err := ev.Wait(ctx)
		rc.inFlight.Decrement()

		if err != nil {
			if isDone(ctx, err) {
				return nil
			}
			return err
		}

		rc.operations.Increment()
		return nil
	})

	_ = churn.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	ev.Set()
	if !ev.IsSet() {
		rc.violation("event not set after the final Set")
	}

	settled := make(chan struct{})
	go func() {
		defer close(settled)
		for rc.inFlight.Value() != 0 && waitCtx.Err() == nil {
			time.Sleep(time.Millisecond)
		}
	}()

	select {
	case <-settled:
	case <-time.After(rc.runner.settleTimeout):
		rc.violation("%d waiters did not observe the final Set", rc.inFlight.Value())
	}

	cancelWaiters()
	if err := waiters.Wait(); err != nil && !isViolation(err) {
		return err
	}
	return ctx.Err()
}

func jitter() {
	time.Sleep(time.Duration(rand.IntN(50)) * time.Microsecond)
}
