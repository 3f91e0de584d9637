// Package async provides low-level synchronization primitives whose contended
// acquisitions can be awaited: a [LifoSemaphore], a [Lock], a
// [ReaderWriterLock] and a [ManualResetEvent].
//
// None of the primitives is built on another lock. Each keeps its state in an
// immutable snapshot behind an atomic pointer and mutates it with
// compare-and-swap retry loops, so they can sit beneath other locks without
// introducing lock ordering concerns.
//
// Acquiring a semaphore permit or a lock returns an [*Acquisition]. It is either
// already completed (the fast path succeeded) or pending until a release hands
// the resource over. Once completed it yields a [Releaser] whose Release method
// gives the resource back:
//
//	r, err := l.Lock(ctx)
//	if err != nil {
//		return err
//	}
//	defer r.Release()
//
// The semaphore and the lock wake waiters in last-in-first-out order. This
// favors recently parked goroutines and keeps tail latency low under bursty
// load, at the price of starvation freedom: a waiter parked early under
// sustained contention may wait indefinitely.
package async
