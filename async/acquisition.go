package async

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrAbandoned is returned by Acquisition.Wait when an earlier Wait call on the
// same acquisition gave up because its context ended.
var ErrAbandoned = errors.New("acquisition abandoned")

const (
	waiterPending int32 = iota
	waiterGranted
	waiterCanceled
)

// waiter is a queued request. Exactly one of grant and cancel succeeds.
type waiter struct {
	state atomic.Int32
	ready chan struct{}
}

func newWaiter() *waiter {
	return &waiter{ready: make(chan struct{})}
}

func (w *waiter) grant() bool {
	if !w.state.CompareAndSwap(waiterPending, waiterGranted) {
		return false
	}
	close(w.ready)
	return true
}

func (w *waiter) cancel() bool {
	return w.state.CompareAndSwap(waiterPending, waiterCanceled)
}

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Acquisition is the result of an acquisition attempt that may still be waiting
// for the resource.
type Acquisition struct {
	waiter   *waiter // nil when the fast path succeeded
	releaser Releaser
	abandon  func(*waiter)
}

func completedAcquisition(r Releaser) *Acquisition {
	return &Acquisition{releaser: r}
}

func pendingAcquisition(w *waiter, r Releaser, abandon func(*waiter)) *Acquisition {
	return &Acquisition{waiter: w, releaser: r, abandon: abandon}
}

// Done returns a channel that is closed once the resource has been handed to
// this acquisition.
func (a *Acquisition) Done() <-chan struct{} {
	if a.waiter == nil {
		return closedChan
	}
	return a.waiter.ready
}

// IsCompleted reports whether the resource has been handed to this acquisition.
func (a *Acquisition) IsCompleted() bool {
	return a.waiter == nil || a.waiter.state.Load() == waiterGranted
}

// Wait blocks until the resource is handed over or ctx is done. If ctx ends
// first the request is withdrawn and ctx.Err() is returned; a hand-over that
// races with the cancellation wins and is returned as a success, so no
// resource is lost either way.
func (a *Acquisition) Wait(ctx context.Context) (Releaser, error) {
	if a.waiter == nil {
		return a.releaser, nil
	}
	if a.waiter.state.Load() == waiterCanceled {
		return nil, ErrAbandoned
	}

	select {
	case <-a.waiter.ready:
		return a.releaser, nil
	case <-ctx.Done():
	}

	if !a.waiter.cancel() {
		if a.waiter.state.Load() == waiterCanceled {
			return nil, ErrAbandoned
		}
		<-a.waiter.ready
		return a.releaser, nil
	}
	a.abandon(a.waiter)
	return nil, ctx.Err()
}

// WaitTimeout is like Wait with a deadline of d from now. It reports false if
// the resource was not handed over in time.
func (a *Acquisition) WaitTimeout(d time.Duration) (Releaser, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	r, err := a.Wait(ctx)
	if err != nil {
		return nil, false
	}
	return r, true
}
