package async

import (
	"context"
)

// Lock is a mutual exclusion lock whose contended acquisitions are served in
// last-in-first-out order. It is a LifoSemaphore with a single permit. Create
// instances with NewLock.
type Lock struct {
	sem *LifoSemaphore
}

func NewLock() *Lock {
	return &Lock{sem: NewLifoSemaphore(1)}
}

// LockAsync acquires the lock, or queues for it if it is held.
func (l *Lock) LockAsync() *Acquisition {
	return l.sem.WaitAsync()
}

// Lock blocks until the lock is acquired or ctx is done.
func (l *Lock) Lock(ctx context.Context) (Releaser, error) {
	return l.sem.Wait(ctx)
}

// TryLockImmediately acquires the lock only if it is free. A failed attempt
// does not queue and leaves no trace.
func (l *Lock) TryLockImmediately() (Releaser, bool) {
	return l.sem.TryWait()
}

// IsLocked reports whether the lock is currently held.
func (l *Lock) IsLocked() bool {
	return l.sem.CurrentCount() == 0
}

// QueueLength returns the number of goroutines waiting for the lock.
func (l *Lock) QueueLength() int {
	return l.sem.CurrentQueue()
}
