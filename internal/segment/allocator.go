// Package segment acquires id ranges from a counter store with bounded conflict retry.
package segment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/arloliu/segid/internal/logging"
	"github.com/arloliu/segid/internal/metrics"
	"github.com/arloliu/segid/types"
)

// RetryPolicy bounds how often a conflicting acquisition is retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of store calls per Allocate, including the first.
	MaxAttempts int

	// InitialInterval is the backoff before the first retry.
	InitialInterval time.Duration

	// MaxInterval caps the backoff between retries.
	MaxInterval time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

// Allocator wraps a CounterStore and turns AcquireRange into a single
// range-or-error call for the facade and the replenisher.
type Allocator struct {
	store   types.CounterStore
	policy  RetryPolicy
	logger  types.Logger
	metrics types.MetricsCollector
}

// New creates a segment allocator.
//
// Zero fields in policy fall back to DefaultRetryPolicy. A nil logger or
// metrics collector is replaced with a no-op implementation.
//
// Parameters:
//   - store: Counter store to acquire ranges from
//   - policy: Conflict retry policy
//   - logger: Logger for retry diagnostics
//   - mc: Metrics collector for per-attempt latency and conflict retries
//
// Returns:
//   - *Allocator: Ready to use allocator
func New(store types.CounterStore, policy RetryPolicy, logger types.Logger, mc types.MetricsCollector) *Allocator {
	defaults := DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = defaults.InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = defaults.MaxInterval
	}
	if policy.MaxInterval < policy.InitialInterval {
		policy.MaxInterval = policy.InitialInterval
	}
	if mc == nil {
		mc = metrics.NewNop()
	}

	return &Allocator{
		store:   store,
		policy:  policy,
		logger:  logging.OrNop(logger),
		metrics: mc,
	}
}

// Policy returns the effective retry policy.
func (a *Allocator) Policy() RetryPolicy {
	return a.policy
}

// Allocate reserves batchSize consecutive ids for code.
//
// Version conflicts are retried with exponential backoff up to the policy's
// attempt budget. Every other failure ends the call immediately.
//
// Parameters:
//   - ctx: Bounds the whole call including backoff sleeps
//   - code: Logical counter name (must be non-empty)
//   - batchSize: Number of ids to reserve (must be positive)
//
// Returns:
//   - types.IDRange: Exactly batchSize ids starting at 1 or above
//   - error: ErrInvalidConfig before any store call for bad input;
//     ErrStoreConflictExhausted when conflicts outlast the budget;
//     ErrStoreUnavailable together with ErrTimeout when ctx ends;
//     ErrStoreUnavailable for any other store failure
func (a *Allocator) Allocate(ctx context.Context, code string, batchSize int64) (types.IDRange, error) {
	if code == "" {
		return types.IDRange{}, fmt.Errorf("%w: code must not be empty", types.ErrInvalidConfig)
	}
	if batchSize <= 0 {
		return types.IDRange{}, fmt.Errorf("%w: batch size must be positive, got %d", types.ErrInvalidConfig, batchSize)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = a.policy.InitialInterval
	eb.MaxInterval = a.policy.MaxInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(a.policy.MaxAttempts-1)), ctx) //nolint:gosec // MaxAttempts is positive

	var (
		result   types.IDRange
		lastErr  error
		attempts int
	)

	operation := func() error {
		attempts++
		start := time.Now()

		r, err := a.store.AcquireRange(ctx, code, batchSize)
		if err == nil {
			err = r.Validate(batchSize)
		}
		a.metrics.RecordAcquireDuration(code, time.Since(start).Seconds(), err == nil)

		lastErr = err
		if err == nil {
			result = r
			return nil
		}
		if errors.Is(err, types.ErrStoreConflict) && ctx.Err() == nil {
			return err
		}

		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		a.metrics.RecordConflictRetry(code)
		a.logger.Debug("counter conflict, retrying",
			"code", code,
			"attempt", attempts,
			"backoff", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return types.IDRange{}, a.classify(ctx, code, attempts, lastErr, err)
	}

	return result, nil
}

// classify maps the retry outcome onto the error taxonomy.
func (a *Allocator) classify(ctx context.Context, code string, attempts int, lastErr, err error) error {
	if lastErr == nil {
		lastErr = err
	}

	switch {
	case ctx.Err() != nil || errors.Is(lastErr, context.DeadlineExceeded) || errors.Is(lastErr, context.Canceled):
		cause := lastErr
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(cause, ctxErr) {
			cause = fmt.Errorf("%w: %w", cause, ctxErr)
		}

		return fmt.Errorf("acquire %q: %w: %w: %w", code, types.ErrStoreUnavailable, types.ErrTimeout, cause)
	case errors.Is(lastErr, types.ErrStoreConflict):
		a.logger.Warn("counter conflict retries exhausted", "code", code, "attempts", attempts)

		return fmt.Errorf("acquire %q after %d attempts: %w: %w", code, attempts, types.ErrStoreConflictExhausted, lastErr)
	case errors.Is(lastErr, types.ErrStoreUnavailable):
		return fmt.Errorf("acquire %q: %w", code, lastErr)
	default:
		return fmt.Errorf("acquire %q: %w: %w", code, types.ErrStoreUnavailable, lastErr)
	}
}
