package stress_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhecker/threading/config"
	"github.com/lhecker/threading/stress"
)

func newRunner() *stress.Runner {
	return stress.NewRunner(log.New(io.Discard))
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	tests := map[string]*config.ScenarioConfig{
		"semaphore": {
			Primitive: config.PrimitiveSemaphore, Capacity: 3, Parallelism: 16,
		},
		"semaphore with cancellation": {
			Primitive: config.PrimitiveSemaphore, Capacity: 2, Parallelism: 16, CancelRatio: 0.5,
			Payload: 50 * time.Microsecond,
		},
		"lock": {
			Primitive: config.PrimitiveLock, Capacity: 1, Parallelism: 8,
		},
		"rwlock": {
			Primitive: config.PrimitiveRWLock, Parallelism: 16, ReadRatio: 0.7,
		},
		"rwlock with cancellation": {
			Primitive: config.PrimitiveRWLock, Parallelism: 16, ReadRatio: 0.5, CancelRatio: 0.3,
		},
		"event": {
			Primitive: config.PrimitiveEvent, Waiters: 4, Setters: 2, Resetters: 4,
		},
	}

	for name, sc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sc.Name = name
			sc.Duration = 100 * time.Millisecond

			res, err := newRunner().Run(context.Background(), sc)
			require.NoError(t, err)
			require.NoError(t, res.Violations.ErrorOrNil())

			assert.True(t, res.Passed())
			assert.Positive(t, res.Operations)
			assert.Equal(t, sc.Primitive, res.Primitive)
			assert.NotEmpty(t, res.RunID.String())

			if sc.Capacity > 0 {
				assert.LessOrEqual(t, res.MaxObserved, int64(sc.Capacity))
			}

			rec := res.Record()
			assert.Equal(t, name, rec.Scenario)
			assert.True(t, rec.Passed())
		})
	}
}

func TestRunner_Run_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := &config.ScenarioConfig{
		Name: "canceled", Primitive: config.PrimitiveSemaphore, Capacity: 1, Parallelism: 4,
		Duration: time.Minute,
	}

	start := time.Now()
	_, err := newRunner().Run(ctx, sc)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunner_Run_UnknownPrimitive(t *testing.T) {
	t.Parallel()

	_, err := newRunner().Run(context.Background(), &config.ScenarioConfig{Name: "x", Primitive: "spinlock", Duration: time.Millisecond})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
