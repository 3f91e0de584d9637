package config

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	PrimitiveSemaphore = "semaphore"
	PrimitiveLock      = "lock"
	PrimitiveRWLock    = "rwlock"
	PrimitiveEvent     = "event"
)

type Config struct {
	// Optional
	DatabasePath string            `toml:"database_path"`
	LogLevel     string            `toml:"log_level"`
	Scenarios    []*ScenarioConfig `toml:"scenarios"`
}

type ScenarioConfig struct {
	// Required
	Name      string `toml:"name"`
	Primitive string `toml:"primitive"`

	// Semaphore, lock and rwlock
	Capacity    int `toml:"capacity"`
	Parallelism int `toml:"parallelism"`
	// Upper bound of the random time spent holding the resource.
	Payload time.Duration `toml:"payload"`
	// Fraction of acquisitions that use a short-lived context and may give up.
	CancelRatio float64 `toml:"cancel_ratio"`
	// rwlock only: fraction of acquisitions that take the read side.
	ReadRatio float64 `toml:"read_ratio"`

	// Event only
	Waiters   int `toml:"waiters"`
	Setters   int `toml:"setters"`
	Resetters int `toml:"resetters"`

	// Optional
	Duration time.Duration `toml:"duration"`
}

func Default() *Config {
	cfg := &Config{
		DatabasePath: "threading.db",
		LogLevel:     "info",
	}

	// Mirrors the capacity/parallelism matrix of the semaphore smoke tests.
	for _, cp := range [][2]int{
		{1, 1}, {1, 8}, {1, 32},
		{4, 4}, {4, 64},
		{16, 16}, {16, 256},
		{256, 256}, {256, 8}, {256, 1},
	} {
		cfg.Scenarios = append(cfg.Scenarios, &ScenarioConfig{
			Name:        fmt.Sprintf("semaphore-%d-%d", cp[0], cp[1]),
			Primitive:   PrimitiveSemaphore,
			Capacity:    cp[0],
			Parallelism: cp[1],
		})
	}

	cfg.Scenarios = append(cfg.Scenarios,
		&ScenarioConfig{Name: "semaphore-cancel", Primitive: PrimitiveSemaphore, Capacity: 4, Parallelism: 32, CancelRatio: 0.25},
		&ScenarioConfig{Name: "lock", Primitive: PrimitiveLock, Parallelism: 16, Payload: time.Millisecond},
		&ScenarioConfig{Name: "rwlock", Primitive: PrimitiveRWLock, Parallelism: 32, ReadRatio: 0.8},
		&ScenarioConfig{Name: "rwlock-cancel", Primitive: PrimitiveRWLock, Parallelism: 32, ReadRatio: 0.5, CancelRatio: 0.25},
		&ScenarioConfig{Name: "event-1-1-0", Primitive: PrimitiveEvent, Waiters: 1, Setters: 1},
		&ScenarioConfig{Name: "event-4-4-4", Primitive: PrimitiveEvent, Waiters: 4, Setters: 4, Resetters: 4},
		&ScenarioConfig{Name: "event-2-1-6", Primitive: PrimitiveEvent, Waiters: 2, Setters: 1, Resetters: 6},
	)

	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in zero values that have a sensible default.
func (c *Config) ApplyDefaults() {
	if len(c.DatabasePath) == 0 {
		c.DatabasePath = "threading.db"
	}
	if len(c.LogLevel) == 0 {
		c.LogLevel = "info"
	}

	for _, sc := range c.Scenarios {
		if sc.Duration == 0 {
			sc.Duration = 5 * time.Second
		}
		if sc.Primitive == PrimitiveLock {
			sc.Capacity = 1
		}
	}
}

func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Scenarios))

	for i, sc := range c.Scenarios {
		if sc == nil {
			return fmt.Errorf("%w: scenario #%d is empty", ErrInvalidConfig, i)
		}
		if len(sc.Name) == 0 {
			return fmt.Errorf("%w: scenario #%d has no name", ErrInvalidConfig, i)
		}
		if _, ok := seen[sc.Name]; ok {
			return fmt.Errorf("%w: duplicate scenario %q", ErrInvalidConfig, sc.Name)
		}
		seen[sc.Name] = struct{}{}

		if err := sc.validate(); err != nil {
			return fmt.Errorf("%w: scenario %q: %v", ErrInvalidConfig, sc.Name, err)
		}
	}

	return nil
}

func (sc *ScenarioConfig) validate() error {
	if sc.Duration <= 0 {
		return fmt.Errorf("non-positive duration %v", sc.Duration)
	}
	if sc.Payload < 0 {
		return fmt.Errorf("negative payload %v", sc.Payload)
	}
	if sc.CancelRatio < 0 || sc.CancelRatio > 1 {
		return fmt.Errorf("cancel_ratio %v out of [0, 1]", sc.CancelRatio)
	}

	switch sc.Primitive {
	case PrimitiveSemaphore, PrimitiveLock:
		if sc.Capacity <= 0 {
			return fmt.Errorf("non-positive capacity %d", sc.Capacity)
		}
		if sc.Parallelism <= 0 {
			return fmt.Errorf("non-positive parallelism %d", sc.Parallelism)
		}
	case PrimitiveRWLock:
		if sc.Parallelism <= 0 {
			return fmt.Errorf("non-positive parallelism %d", sc.Parallelism)
		}
		if sc.ReadRatio < 0 || sc.ReadRatio > 1 {
			return fmt.Errorf("read_ratio %v out of [0, 1]", sc.ReadRatio)
		}
	case PrimitiveEvent:
		if sc.Waiters <= 0 || sc.Setters <= 0 || sc.Resetters < 0 {
			return fmt.Errorf("invalid waiters/setters/resetters %d/%d/%d", sc.Waiters, sc.Setters, sc.Resetters)
		}
	default:
		return fmt.Errorf("unknown primitive %q", sc.Primitive)
	}

	return nil
}

// Select returns the scenarios with the given names, or all of them if names
// is empty.
func (c *Config) Select(names []string) ([]*ScenarioConfig, error) {
	if len(names) == 0 {
		return c.Scenarios, nil
	}

	byName := make(map[string]*ScenarioConfig, len(c.Scenarios))
	for _, sc := range c.Scenarios {
		byName[sc.Name] = sc
	}

	selected := make([]*ScenarioConfig, 0, len(names))
	for _, name := range names {
		sc, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown scenario %q", ErrInvalidConfig, name)
		}
		selected = append(selected, sc)
	}
	return selected, nil
}
