// Package atomics wraps sync/atomic scalars with the read-modify-write helpers
// the async primitives and the stress harness are written against.
package atomics

import (
	"strconv"
	"sync/atomic"
)

// Boolean is a boolean value updated atomically. The zero value is false.
type Boolean struct {
	v atomic.Bool
}

func NewBoolean(initial bool) *Boolean {
	b := &Boolean{}
	b.v.Store(initial)
	return b
}

func (b *Boolean) Value() bool {
	return b.v.Load()
}

func (b *Boolean) Set(value bool) {
	b.v.Store(value)
}

// TrySetTrue flips the value from false to true and reports whether this call
// performed the transition.
func (b *Boolean) TrySetTrue() bool {
	return b.v.CompareAndSwap(false, true)
}

// TrySetFalse flips the value from true to false and reports whether this call
// performed the transition.
func (b *Boolean) TrySetFalse() bool {
	return b.v.CompareAndSwap(true, false)
}

func (b *Boolean) TrySet(value bool) bool {
	if value {
		return b.TrySetTrue()
	}
	return b.TrySetFalse()
}

func (b *Boolean) String() string {
	return "Value: " + strconv.FormatBool(b.Value())
}
