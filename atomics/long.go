package atomics

import (
	"strconv"
	"sync/atomic"
)

// Long is an int64 updated atomically. The zero value is 0.
type Long struct {
	v atomic.Int64
}

func NewLong(initial int64) *Long {
	l := &Long{}
	l.v.Store(initial)
	return l
}

func (l *Long) Value() int64 {
	return l.v.Load()
}

func (l *Long) Set(value int64) {
	l.v.Store(value)
}

// Add adds delta and returns the new value.
func (l *Long) Add(delta int64) int64 {
	return l.v.Add(delta)
}

func (l *Long) Increment() int64 {
	return l.v.Add(1)
}

func (l *Long) Decrement() int64 {
	return l.v.Add(-1)
}

// Exchange stores value and returns the previous one.
func (l *Long) Exchange(value int64) int64 {
	return l.v.Swap(value)
}

// CompareExchange stores value if the current value equals comparand. It
// returns the value observed before the operation either way.
func (l *Long) CompareExchange(value, comparand int64) int64 {
	for {
		current := l.v.Load()
		if current != comparand {
			return current
		}
		if l.v.CompareAndSwap(comparand, value) {
			return comparand
		}
	}
}

// TrySet stores value if the current value equals expected.
func (l *Long) TrySet(value, expected int64) bool {
	return l.v.CompareAndSwap(expected, value)
}

// Max raises the stored value to candidate if candidate is larger and returns
// the resulting value.
func (l *Long) Max(candidate int64) int64 {
	for {
		current := l.v.Load()
		if candidate <= current {
			return current
		}
		if l.v.CompareAndSwap(current, candidate) {
			return candidate
		}
	}
}

func (l *Long) String() string {
	return strconv.FormatInt(l.Value(), 10)
}
