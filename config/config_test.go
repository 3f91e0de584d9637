package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhecker/threading/config"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "threading.db", cfg.DatabasePath)

	primitives := map[string]bool{}
	for _, sc := range cfg.Scenarios {
		primitives[sc.Primitive] = true
		assert.Equal(t, 5*time.Second, sc.Duration, sc.Name)
	}
	assert.Len(t, primitives, 4)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		scenario *config.ScenarioConfig
		valid    bool
	}{
		"semaphore": {
			scenario: &config.ScenarioConfig{Name: "s", Primitive: config.PrimitiveSemaphore, Capacity: 2, Parallelism: 4},
			valid:    true,
		},
		"semaphore without capacity": {
			scenario: &config.ScenarioConfig{Name: "s", Primitive: config.PrimitiveSemaphore, Parallelism: 4},
		},
		"lock gets capacity one": {
			scenario: &config.ScenarioConfig{Name: "s", Primitive: config.PrimitiveLock, Parallelism: 4},
			valid:    true,
		},
		"rwlock with bad read ratio": {
			scenario: &config.ScenarioConfig{Name: "s", Primitive: config.PrimitiveRWLock, Parallelism: 4, ReadRatio: 1.5},
		},
		"event": {
			scenario: &config.ScenarioConfig{Name: "s", Primitive: config.PrimitiveEvent, Waiters: 1, Setters: 1},
			valid:    true,
		},
		"event without setters": {
			scenario: &config.ScenarioConfig{Name: "s", Primitive: config.PrimitiveEvent, Waiters: 1},
		},
		"unknown primitive": {
			scenario: &config.ScenarioConfig{Name: "s", Primitive: "spinlock"},
		},
		"missing name": {
			scenario: &config.ScenarioConfig{Primitive: config.PrimitiveLock, Parallelism: 1},
		},
		"negative cancel ratio": {
			scenario: &config.ScenarioConfig{Name: "s", Primitive: config.PrimitiveLock, Parallelism: 1, CancelRatio: -0.1},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{Scenarios: []*config.ScenarioConfig{tc.scenario}}
			cfg.ApplyDefaults()

			err := cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
			}
		})
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Scenarios: []*config.ScenarioConfig{
		{Name: "a", Primitive: config.PrimitiveLock, Parallelism: 1},
		{Name: "a", Primitive: config.PrimitiveLock, Parallelism: 1},
	}}
	cfg.ApplyDefaults()

	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	all, err := cfg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(cfg.Scenarios))

	some, err := cfg.Select([]string{"lock", "rwlock"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "lock", some[0].Name)
	assert.Equal(t, "rwlock", some[1].Name)

	_, err = cfg.Select([]string{"nope"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
