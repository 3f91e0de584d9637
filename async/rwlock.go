package async

import (
	"context"
	"sync/atomic"
)

// ReaderWriterLock can be held by any number of readers or by a single
// writer. Writers take priority: once a writer is queued no new reader is
// admitted until the queued writers have been served, so a steady stream of
// readers cannot starve writers. Queued writers are served one at a time in
// arrival order. When the last writer leaves, every queued reader is admitted
// at once.
//
// The zero value is an unlocked ReaderWriterLock.
type ReaderWriterLock struct {
	state atomic.Pointer[rwState]
}

const writeHeld = -1

type rwState struct {
	// holders is writeHeld, 0 when free, or the number of active readers.
	holders int
	writers waiterQueue
	readers waiterStack
}

var freeRWState = &rwState{}

func NewReaderWriterLock() *ReaderWriterLock {
	return &ReaderWriterLock{}
}

func (l *ReaderWriterLock) load() (*rwState, *rwState) {
	old := l.state.Load()
	if old == nil {
		return nil, freeRWState
	}
	return old, old
}

func (st *rwState) admitsReader() bool {
	return st.holders != writeHeld && st.writers.size == 0
}

// ReadLockAsync acquires a read hold, or queues for one while a writer holds
// or waits for the lock.
func (l *ReaderWriterLock) ReadLockAsync() *Acquisition {
	var w *waiter
	for {
		old, cur := l.load()
		if cur.admitsReader() {
			next := &rwState{holders: cur.holders + 1, writers: cur.writers, readers: cur.readers}
			if l.state.CompareAndSwap(old, next) {
				return completedAcquisition(l.newReadReleaser())
			}
			continue
		}

		if w == nil {
			w = newWaiter()
		}
		next := &rwState{holders: cur.holders, writers: cur.writers, readers: cur.readers.push(w)}
		if l.state.CompareAndSwap(old, next) {
			return pendingAcquisition(w, l.newReadReleaser(), l.abandonReader)
		}
	}
}

// WriteLockAsync acquires the write hold, or queues for it while the lock is
// held by anyone.
func (l *ReaderWriterLock) WriteLockAsync() *Acquisition {
	var w *waiter
	for {
		old, cur := l.load()
		if cur.holders == 0 {
			next := &rwState{holders: writeHeld, writers: cur.writers, readers: cur.readers}
			if l.state.CompareAndSwap(old, next) {
				return completedAcquisition(l.newWriteReleaser())
			}
			continue
		}

		if w == nil {
			w = newWaiter()
		}
		next := &rwState{holders: cur.holders, writers: cur.writers.push(w), readers: cur.readers}
		if l.state.CompareAndSwap(old, next) {
			return pendingAcquisition(w, l.newWriteReleaser(), l.abandonWriter)
		}
	}
}

func (l *ReaderWriterLock) ReadLock(ctx context.Context) (Releaser, error) {
	return l.ReadLockAsync().Wait(ctx)
}

func (l *ReaderWriterLock) WriteLock(ctx context.Context) (Releaser, error) {
	return l.WriteLockAsync().Wait(ctx)
}

// TryObtainReadLockImmediately acquires a read hold under the same admission
// rule as ReadLockAsync but fails instead of queuing. A failed attempt leaves
// the lock untouched.
func (l *ReaderWriterLock) TryObtainReadLockImmediately() (Releaser, bool) {
	for {
		old, cur := l.load()
		if !cur.admitsReader() {
			return nil, false
		}
		next := &rwState{holders: cur.holders + 1, writers: cur.writers, readers: cur.readers}
		if l.state.CompareAndSwap(old, next) {
			return l.newReadReleaser(), true
		}
	}
}

// TryObtainWriteLockImmediately acquires the write hold only if the lock is
// free. A failed attempt leaves the lock untouched.
func (l *ReaderWriterLock) TryObtainWriteLockImmediately() (Releaser, bool) {
	for {
		old, cur := l.load()
		if cur.holders != 0 {
			return nil, false
		}
		next := &rwState{holders: writeHeld, writers: cur.writers, readers: cur.readers}
		if l.state.CompareAndSwap(old, next) {
			return l.newWriteReleaser(), true
		}
	}
}

// State returns a snapshot of the lock for diagnostics.
func (l *ReaderWriterLock) State() (readers int, writing bool, pendingReaders, pendingWriters int) {
	_, cur := l.load()
	if cur.holders == writeHeld {
		writing = true
	} else {
		readers = cur.holders
	}
	return readers, writing, cur.readers.size, cur.writers.size
}

func (l *ReaderWriterLock) newReadReleaser() Releaser {
	return newReleaser(l.releaseRead)
}

func (l *ReaderWriterLock) newWriteReleaser() Releaser {
	return newReleaser(l.releaseWrite)
}

func (l *ReaderWriterLock) releaseRead() {
	for {
		old, cur := l.load()
		if cur.holders <= 0 {
			panic("read lock released while not held for reading")
		}

		if cur.holders > 1 || cur.writers.size == 0 {
			next := &rwState{holders: cur.holders - 1, writers: cur.writers, readers: cur.readers}
			if l.state.CompareAndSwap(old, next) {
				return
			}
			continue
		}

		w, writers := cur.writers.pop()
		next := &rwState{holders: writeHeld, writers: writers, readers: cur.readers}
		if l.state.CompareAndSwap(old, next) {
			l.handToWriter(w)
			return
		}
	}
}

func (l *ReaderWriterLock) releaseWrite() {
	for {
		old, cur := l.load()
		if cur.holders != writeHeld {
			panic("write lock released while not held for writing")
		}

		switch {
		case cur.writers.size > 0:
			w, writers := cur.writers.pop()
			next := &rwState{holders: writeHeld, writers: writers, readers: cur.readers}
			if l.state.CompareAndSwap(old, next) {
				l.handToWriter(w)
				return
			}
		case cur.readers.size > 0:
			next := &rwState{holders: cur.readers.size, writers: cur.writers}
			if l.state.CompareAndSwap(old, next) {
				l.handToReaders(cur.readers.all())
				return
			}
		default:
			next := &rwState{writers: cur.writers, readers: cur.readers}
			if l.state.CompareAndSwap(old, next) {
				return
			}
		}
	}
}

// handToWriter completes a writer that was already given the write hold. If
// it gave up in the meantime the hold is released on its behalf.
func (l *ReaderWriterLock) handToWriter(w *waiter) {
	if !w.grant() {
		l.releaseWrite()
	}
}

// handToReaders completes readers that were already counted as holders.
func (l *ReaderWriterLock) handToReaders(readers []*waiter) {
	for _, w := range readers {
		if !w.grant() {
			l.releaseRead()
		}
	}
}

func (l *ReaderWriterLock) abandonReader(w *waiter) {
	for {
		old, cur := l.load()
		readers, ok := cur.readers.without(w)
		if !ok {
			return
		}
		next := &rwState{holders: cur.holders, writers: cur.writers, readers: readers}
		if l.state.CompareAndSwap(old, next) {
			return
		}
	}
}

func (l *ReaderWriterLock) abandonWriter(w *waiter) {
	for {
		old, cur := l.load()
		writers, ok := cur.writers.without(w)
		if !ok {
			return
		}

		// Readers queued only because of this writer would otherwise wait
		// for a release that may never come.
		if writers.size == 0 && cur.holders != writeHeld && cur.readers.size > 0 {
			next := &rwState{holders: cur.holders + cur.readers.size, writers: writers}
			if l.state.CompareAndSwap(old, next) {
				l.handToReaders(cur.readers.all())
				return
			}
			continue
		}

		next := &rwState{holders: cur.holders, writers: writers, readers: cur.readers}
		if l.state.CompareAndSwap(old, next) {
			return
		}
	}
}
