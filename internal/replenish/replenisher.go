// Package replenish refills an allocator's buffer in the background.
package replenish

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/segid/internal/logging"
	"github.com/arloliu/segid/internal/metrics"
	"github.com/arloliu/segid/types"
)

// RangeAllocator acquires one range from the counter store.
type RangeAllocator interface {
	Allocate(ctx context.Context, code string, batchSize int64) (types.IDRange, error)
}

// RangeSink receives acquired ranges.
type RangeSink interface {
	Enqueue(r types.IDRange)
}

// Config configures a Replenisher.
type Config struct {
	// Code is the logical counter name.
	Code string

	// BatchSize is the number of ids acquired per refill.
	BatchSize int64

	// Timeout bounds each refill's store call (0 means no timeout).
	Timeout time.Duration

	// SingleFlight skips triggers while a refill is already running.
	SingleFlight bool

	Logger  types.Logger
	Metrics types.MetricsCollector
	Hooks   types.Hooks
}

// Replenisher runs background refills on demand.
//
// Each Trigger starts at most one goroutine that acquires a whole range and
// enqueues it into the sink. Failures are logged, counted and reported through
// Hooks.OnRefillFailed, then dropped; they never reach GenerateID callers.
//
// Without SingleFlight, overlapping refills are allowed. Each one reserves a
// distinct range, so overlap costs ids but never uniqueness.
type Replenisher struct {
	cfg       Config
	allocator RangeAllocator
	sink      RangeSink
	logger    types.Logger
	metrics   types.MetricsCollector

	inFlight atomic.Bool
	running  atomic.Int32

	// lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a Replenisher that fills sink from allocator.
//
// Parameters:
//   - cfg: Refill configuration
//   - allocator: Source of ranges (usually *segment.Allocator)
//   - sink: Destination of ranges (usually *buffer.Buffer)
//
// Returns:
//   - *Replenisher: Ready to trigger; call Close to stop
func New(cfg Config, allocator RangeAllocator, sink RangeSink) *Replenisher {
	ctx, cancel := context.WithCancel(context.Background())
	mc := cfg.Metrics
	if mc == nil {
		mc = metrics.NewNop()
	}

	return &Replenisher{
		cfg:       cfg,
		allocator: allocator,
		sink:      sink,
		logger:    logging.OrNop(cfg.Logger),
		metrics:   mc,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Trigger starts a background refill without blocking.
//
// Returns:
//   - bool: false when the replenisher is closed, or when SingleFlight is set
//     and a refill is already running
func (r *Replenisher) Trigger() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	if r.cfg.SingleFlight && !r.inFlight.CompareAndSwap(false, true) {
		r.metrics.RecordRefillSkipped(r.cfg.Code)
		return false
	}

	r.running.Add(1)
	r.wg.Add(1)
	go r.refill()

	return true
}

// Running returns the number of refills in progress.
func (r *Replenisher) Running() int {
	return int(r.running.Load())
}

// Close stops accepting triggers, cancels running refills and waits for them.
//
// Parameters:
//   - ctx: Bounds the wait
//
// Returns:
//   - error: ctx.Err() if refills did not finish in time
func (r *Replenisher) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		r.cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %d refills: %w", r.Running(), ctx.Err())
	}
}

func (r *Replenisher) refill() {
	defer r.wg.Done()
	defer r.running.Add(-1)
	if r.cfg.SingleFlight {
		defer r.inFlight.Store(false)
	}

	ctx := r.ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	rng, err := r.allocator.Allocate(ctx, r.cfg.Code, r.cfg.BatchSize)
	if err != nil {
		r.metrics.RecordRefill(r.cfg.Code, types.RefillThreshold, false)

		// shutdown cancels in-flight refills; that is not worth an error log
		if r.ctx.Err() != nil {
			r.logger.Debug("background refill canceled", "code", r.cfg.Code, "error", err)
		} else {
			r.logger.Warn("background refill failed", "code", r.cfg.Code, "error", err)
		}

		if r.cfg.Hooks.OnRefillFailed != nil {
			if hookErr := r.cfg.Hooks.OnRefillFailed(r.ctx, r.cfg.Code, err); hookErr != nil {
				r.logger.Error("refill failed hook error", "code", r.cfg.Code, "error", hookErr)
			}
		}

		return
	}

	r.sink.Enqueue(rng)
	r.metrics.RecordRefill(r.cfg.Code, types.RefillThreshold, true)
	r.logger.Debug("background refill enqueued", "code", r.cfg.Code, "range", rng.String())

	if r.cfg.Hooks.OnRangeAcquired != nil {
		if hookErr := r.cfg.Hooks.OnRangeAcquired(r.ctx, r.cfg.Code, rng, types.RefillThreshold); hookErr != nil {
			r.logger.Error("range acquired hook error", "code", r.cfg.Code, "error", hookErr)
		}
	}
}
