// Package stress drives the async primitives from many goroutines for a fixed
// duration and checks that their invariants held throughout the run.
package stress

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/lhecker/threading/async"
	"github.com/lhecker/threading/atomics"
	"github.com/lhecker/threading/config"
	"github.com/lhecker/threading/database"
	"github.com/lhecker/threading/guid"
)

var ErrViolation = errors.New("invariant violated")

// Result summarizes a scenario run. Violations is nil for a passing run.
type Result struct {
	RunID      uuid.UUID
	Scenario   string
	Primitive  string
	StartedAt  time.Time
	Elapsed    time.Duration
	Operations int64
	Canceled   int64
	// Highest number of concurrent holders seen (readers for rwlock).
	MaxObserved int64
	Violations  *multierror.Error
}

func (r *Result) Passed() bool {
	return r.Violations.ErrorOrNil() == nil
}

func (r *Result) Record() *database.Record {
	rec := &database.Record{
		RunID:       r.RunID.String(),
		Scenario:    r.Scenario,
		Primitive:   r.Primitive,
		StartedAt:   r.StartedAt,
		Elapsed:     r.Elapsed,
		Operations:  r.Operations,
		Canceled:    r.Canceled,
		MaxObserved: r.MaxObserved,
	}
	if err := r.Violations.ErrorOrNil(); err != nil {
		rec.Failure = err.Error()
	}
	return rec
}

type Runner struct {
	logger *log.Logger
	// How long waiters may take to observe the final Set of an event scenario.
	settleTimeout time.Duration
}

func NewRunner(logger *log.Logger) *Runner {
	return &Runner{
		logger:        logger,
		settleTimeout: 5 * time.Second,
	}
}

// Run executes a single scenario. The returned error is only non-nil if ctx
// ended before the scenario did; invariant violations are reported through
// Result.Violations.
func (r *Runner) Run(ctx context.Context, sc *config.ScenarioConfig) (*Result, error) {
	rc := &runContext{
		runner:   r,
		scenario: sc,
		logger:   r.logger.With("scenario", sc.Name),
		lock:     async.NewLock(),
		result: &Result{
			RunID:     guid.NewNotCryptoQuality(),
			Scenario:  sc.Name,
			Primitive: sc.Primitive,
			StartedAt: time.Now(),
		},
	}

	rc.logger.Debug("scenario starting", "run", rc.result.RunID, "primitive", sc.Primitive, "duration", sc.Duration)

	var err error
	switch sc.Primitive {
	case config.PrimitiveSemaphore:
		err = rc.runSemaphore(ctx)
	case config.PrimitiveLock:
		err = rc.runLock(ctx)
	case config.PrimitiveRWLock:
		err = rc.runRWLock(ctx)
	case config.PrimitiveEvent:
		err = rc.runEvent(ctx)
	default:
		err = fmt.Errorf("%w: unknown primitive %q", config.ErrInvalidConfig, sc.Primitive)
	}

	res := rc.result
	res.Elapsed = time.Since(res.StartedAt)
	res.Operations = rc.operations.Value()
	res.Canceled = rc.canceled.Value()
	res.MaxObserved = rc.maxObserved.Value()

	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	rc.logger.Debug("scenario finished", "ops", res.Operations, "canceled", res.Canceled, "passed", res.Passed())
	return res, nil
}

type runContext struct {
	// Structurized arguments
	runner   *Runner
	scenario *config.ScenarioConfig
	logger   *log.Logger

	// Counters shared by all workers
	operations  atomics.Long
	canceled    atomics.Long
	inFlight    atomics.Long
	maxObserved atomics.Long

	// Guards result.Violations
	lock   *async.Lock
	result *Result
}

// violation records a broken invariant and returns it so that a worker can
// hand it to its errgroup and stop the run.
func (rc *runContext) violation(format string, args ...any) error {
	err := fmt.Errorf("%w: %s", ErrViolation, fmt.Sprintf(format, args...))

	r, lockErr := rc.lock.Lock(context.Background())
	if lockErr == nil {
		rc.result.Violations = multierror.Append(rc.result.Violations, err)
		r.Release()
	}

	rc.logger.Error("invariant violated", "err", err)
	return err
}

// spawn starts n workers running fn until ctx ends or one of them fails.
func spawn(ctx context.Context, n int, fn func(ctx context.Context) error) *errgroup.Group {
	eg, ctx := errgroup.WithContext(ctx)
	for range n {
		eg.Go(func() error {
			for ctx.Err() == nil {
				if err := fn(ctx); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg
}

// acquire obtains a Releaser through wait. With probability CancelRatio it
// uses a context that expires quickly; an acquisition given up that way is
// counted and reported as (nil, nil).
func (rc *runContext) acquire(ctx context.Context, wait func(context.Context) (async.Releaser, error)) (async.Releaser, error) {
	if rc.scenario.CancelRatio == 0 || rand.Float64() >= rc.scenario.CancelRatio {
		return wait(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(rand.IntN(100))*time.Microsecond)
	defer cancel()

	r, err := wait(waitCtx)
	if err != nil && ctx.Err() == nil {
		rc.canceled.Increment()
		return nil, nil
	}
	return r, err
}

func (rc *runContext) payload() {
	if rc.scenario.Payload > 0 {
		time.Sleep(rand.N(rc.scenario.Payload))
	} else {
		runtime.Gosched()
	}
}

func isDone(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
