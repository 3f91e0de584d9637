package async

import (
	"context"
	"sync/atomic"
)

// LifoSemaphore is a counting semaphore that hands released permits to the
// most recently queued waiter first.
//
// A released permit is always transferred directly to a waiter when one is
// queued, so whenever CurrentQueue is non-zero CurrentCount is zero.
type LifoSemaphore struct {
	state atomic.Pointer[semaphoreState]
}

type semaphoreState struct {
	count   int
	waiters waiterStack
}

var emptySemaphoreState = &semaphoreState{}

// NewLifoSemaphore creates a semaphore holding count permits. The zero value
// is a semaphore without permits.
func NewLifoSemaphore(count int) *LifoSemaphore {
	if count < 0 {
		panic("invalid count")
	}

	s := &LifoSemaphore{}
	s.state.Store(&semaphoreState{count: count})
	return s
}

func (s *LifoSemaphore) load() (*semaphoreState, *semaphoreState) {
	old := s.state.Load()
	if old == nil {
		return nil, emptySemaphoreState
	}
	return old, old
}

// WaitAsync takes a permit if one is available and returns a completed
// acquisition. Otherwise it queues on top of the waiter stack and returns an
// acquisition that completes when a Release hands it a permit.
func (s *LifoSemaphore) WaitAsync() *Acquisition {
	var w *waiter
	for {
		old, cur := s.load()
		if cur.count > 0 {
			if s.state.CompareAndSwap(old, &semaphoreState{count: cur.count - 1, waiters: cur.waiters}) {
				return completedAcquisition(s.newPermit())
			}
			continue
		}

		if w == nil {
			w = newWaiter()
		}
		if s.state.CompareAndSwap(old, &semaphoreState{waiters: cur.waiters.push(w)}) {
			return pendingAcquisition(w, s.newPermit(), s.abandon)
		}
	}
}

// Wait blocks until a permit is available or ctx is done.
func (s *LifoSemaphore) Wait(ctx context.Context) (Releaser, error) {
	return s.WaitAsync().Wait(ctx)
}

// TryWait takes a permit only if one is available right now. A failed attempt
// leaves the semaphore untouched.
func (s *LifoSemaphore) TryWait() (Releaser, bool) {
	if !s.tryAcquire() {
		return nil, false
	}
	return s.newPermit(), true
}

func (s *LifoSemaphore) tryAcquire() bool {
	for {
		old, cur := s.load()
		if cur.count == 0 {
			return false
		}
		if s.state.CompareAndSwap(old, &semaphoreState{count: cur.count - 1, waiters: cur.waiters}) {
			return true
		}
	}
}

// Release returns n permits. Up to n queued waiters, most recent first, each
// receive one of them; the rest become available to future callers. Releasing
// more permits than were ever taken is allowed and simply grows the count.
func (s *LifoSemaphore) Release(n int) {
	if n <= 0 {
		panic("invalid release count")
	}

	for n > 0 {
		old, cur := s.load()
		popped, rest := cur.waiters.popN(n)
		next := &semaphoreState{count: cur.count + n - len(popped), waiters: rest}
		if !s.state.CompareAndSwap(old, next) {
			continue
		}

		// Waiters that gave up between being queued and being popped here
		// cannot take their permit, so it goes around again.
		n = 0
		for _, w := range popped {
			if !w.grant() {
				n++
			}
		}
	}
}

// CurrentCount returns the number of permits available right now.
func (s *LifoSemaphore) CurrentCount() int {
	_, cur := s.load()
	return cur.count
}

// CurrentQueue returns the number of queued waiters.
func (s *LifoSemaphore) CurrentQueue() int {
	_, cur := s.load()
	return cur.waiters.size
}

func (s *LifoSemaphore) newPermit() Releaser {
	return newReleaser(func() { s.Release(1) })
}

func (s *LifoSemaphore) abandon(w *waiter) {
	for {
		old, cur := s.load()
		rest, ok := cur.waiters.without(w)
		if !ok {
			// Already popped by Release, which re-releases the permit.
			return
		}
		if s.state.CompareAndSwap(old, &semaphoreState{count: cur.count, waiters: rest}) {
			return
		}
	}
}
