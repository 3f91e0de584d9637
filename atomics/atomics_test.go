package atomics_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lhecker/threading/atomics"
)

func TestBoolean(t *testing.T) {
	t.Parallel()

	t.Run("try set true", func(t *testing.T) {
		t.Parallel()

		b := atomics.NewBoolean(false)
		assert.True(t, b.TrySetTrue())
		assert.False(t, b.TrySetTrue())
		assert.True(t, b.Value())
	})

	t.Run("try set false", func(t *testing.T) {
		t.Parallel()

		b := atomics.NewBoolean(true)
		assert.True(t, b.TrySetFalse())
		assert.False(t, b.TrySetFalse())
		assert.False(t, b.Value())
	})

	t.Run("try set", func(t *testing.T) {
		t.Parallel()

		var b atomics.Boolean
		assert.False(t, b.TrySet(false))
		assert.True(t, b.TrySet(true))
		assert.True(t, b.TrySet(false))
	})

	t.Run("set and string", func(t *testing.T) {
		t.Parallel()

		var b atomics.Boolean
		b.Set(true)
		assert.Equal(t, "Value: true", b.String())
	})

	t.Run("only one goroutine wins the transition", func(t *testing.T) {
		t.Parallel()

		var b atomics.Boolean
		var wins atomics.Long

		var wg sync.WaitGroup
		wg.Add(64)
		for range 64 {
			go func() {
				defer wg.Done()
				if b.TrySetTrue() {
					wins.Increment()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), wins.Value())
	})
}

func TestLong(t *testing.T) {
	t.Parallel()

	t.Run("add", func(t *testing.T) {
		t.Parallel()

		l := atomics.NewLong(0)
		assert.Equal(t, int64(1), l.Add(1))
		assert.Equal(t, int64(3), l.Add(2))
		assert.Equal(t, int64(-7), l.Add(-10))
	})

	t.Run("compare exchange", func(t *testing.T) {
		t.Parallel()

		l := atomics.NewLong(1)
		assert.Equal(t, int64(1), l.CompareExchange(2, 0))
		assert.Equal(t, int64(1), l.Value())

		assert.Equal(t, int64(1), l.CompareExchange(2, 1))
		assert.Equal(t, int64(2), l.Value())
	})

	t.Run("exchange", func(t *testing.T) {
		t.Parallel()

		l := atomics.NewLong(1)
		assert.Equal(t, int64(1), l.Exchange(2))
		assert.Equal(t, int64(2), l.Value())
	})

	t.Run("increment and decrement", func(t *testing.T) {
		t.Parallel()

		var l atomics.Long
		assert.Equal(t, int64(1), l.Increment())
		assert.Equal(t, int64(0), l.Decrement())
		assert.Equal(t, int64(-1), l.Decrement())
		assert.Equal(t, "-1", l.String())
	})

	t.Run("try set", func(t *testing.T) {
		t.Parallel()

		var l atomics.Long
		assert.False(t, l.TrySet(10, 1))
		assert.Equal(t, int64(0), l.Value())

		assert.True(t, l.TrySet(10, 0))
		assert.Equal(t, int64(10), l.Value())
	})

	t.Run("max", func(t *testing.T) {
		t.Parallel()

		var l atomics.Long
		assert.Equal(t, int64(5), l.Max(5))
		assert.Equal(t, int64(5), l.Max(3))
		assert.Equal(t, int64(8), l.Max(8))
	})
}
