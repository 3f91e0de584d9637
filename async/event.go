package async

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lhecker/threading/atomics"
)

// ManualResetEvent is a broadcast signal that stays set until it is reset.
//
// Each unset-to-set cycle is an epoch with its own channel. Set closes the
// current epoch's channel; Reset swaps in a fresh epoch, but only if the
// current one is already set. A wait that has observed an epoch complete can
// therefore never be un-resolved by a later Reset.
//
// The zero value is an unset event.
type ManualResetEvent struct {
	current atomic.Pointer[epoch]
}

type epoch struct {
	closed atomics.Boolean
	done   chan struct{}
}

func newEpoch() *epoch {
	return &epoch{done: make(chan struct{})}
}

func (e *epoch) complete() {
	if e.closed.TrySetTrue() {
		close(e.done)
	}
}

func (e *epoch) isComplete() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

func NewManualResetEvent(isSetInitially bool) *ManualResetEvent {
	ev := &ManualResetEvent{}
	ev.current.Store(newEpoch())
	if isSetInitially {
		ev.Set()
	}
	return ev
}

func (ev *ManualResetEvent) load() *epoch {
	for {
		if e := ev.current.Load(); e != nil {
			return e
		}
		ev.current.CompareAndSwap(nil, newEpoch())
	}
}

// Set resolves every pending and future wait on the current epoch. Setting an
// already set event has no effect.
func (ev *ManualResetEvent) Set() {
	ev.load().complete()
}

// Reset starts a new epoch if the event is set. Resetting an unset event has
// no effect and never discards its pending waits.
func (ev *ManualResetEvent) Reset() {
	for {
		e := ev.load()
		if !e.isComplete() {
			return
		}
		if ev.current.CompareAndSwap(e, newEpoch()) {
			return
		}
	}
}

func (ev *ManualResetEvent) IsSet() bool {
	return ev.load().isComplete()
}

// WaitAsync returns a channel that is closed when the current epoch is set.
func (ev *ManualResetEvent) WaitAsync() <-chan struct{} {
	return ev.load().done
}

// Wait blocks until the event is set or ctx is done, returning ctx.Err() in
// the latter case. If the event is already set Wait returns nil right away;
// otherwise a done context takes precedence over a concurrent Set.
func (ev *ManualResetEvent) Wait(ctx context.Context) error {
	done := ev.WaitAsync()
	select {
	case <-done:
		return nil
	default:
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	return ctx.Err()
}

// WaitTimeout reports whether the event became set within d.
func (ev *ManualResetEvent) WaitTimeout(d time.Duration) bool {
	done := ev.WaitAsync()
	select {
	case <-done:
		return true
	default:
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
