package segid

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/arloliu/segid/internal/buffer"
	"github.com/arloliu/segid/internal/hooks"
	"github.com/arloliu/segid/internal/logging"
	"github.com/arloliu/segid/internal/metrics"
	"github.com/arloliu/segid/internal/replenish"
	"github.com/arloliu/segid/internal/segment"
)

// Allocator hands out unique, non-decreasing int64 ids for one code.
//
// Ids are served from an in-memory buffer of ranges reserved from a shared
// CounterStore. When a dequeue leaves ApplyThreshold ids or fewer, a background
// refill reserves the next range so callers rarely wait on the store. When the
// buffer is empty the caller acquires a range synchronously.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Any number of Allocators, in any number of processes, may share one store
//     and code; the store's optimistic concurrency keeps their ranges disjoint
//
// Ids are never reissued, but ids can be skipped: buffered ids are lost on
// Close or process exit, and a range whose acquisition response is lost is
// never used.
type Allocator struct {
	cfg Config

	hooks   Hooks
	metrics MetricsCollector
	logger  Logger

	buffer      *buffer.Buffer
	segment     *segment.Allocator
	replenisher *replenish.Replenisher
	coalesce    singleflight.Group

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

// New creates an Allocator for cfg.Code backed by store.
//
// Missing timing and retry values are filled from DefaultConfig. The
// configuration is validated before the store is touched.
//
// Parameters:
//   - cfg: Allocator configuration (copied; later changes have no effect)
//   - store: Shared counter store
//   - opts: Optional configuration (hooks, metrics, logger)
//
// Returns:
//   - *Allocator: Ready to use allocator; call Close when done
//   - error: ErrInvalidConfig or ErrCounterStoreRequired
//
// Example:
//
//	cfg := segid.Config{Code: "orders", BatchSize: 1000, ApplyThreshold: 200}
//	alloc, err := segid.New(&cfg, counters)
//	if err != nil {
//	    return err
//	}
//	defer alloc.Close(context.Background())
//
//	id, err := alloc.GenerateID(ctx)
func New(cfg *Config, store CounterStore, opts ...Option) (*Allocator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if store == nil {
		return nil, ErrCounterStoreRequired
	}

	options := &allocatorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	c := *cfg
	SetDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.OrNop(options.logger)
	c.ValidateWithWarnings(logger)

	var mc MetricsCollector = metrics.NewNop()
	if options.metrics != nil {
		mc = options.metrics
	}
	h := hooks.Merge(options.hooks)

	ctx, cancel := context.WithCancel(context.Background())
	a := &Allocator{
		cfg:     c,
		hooks:   h,
		metrics: mc,
		logger:  logger,
		buffer:  buffer.New(),
		ctx:     ctx,
		cancel:  cancel,
	}

	a.segment = segment.New(store, segment.RetryPolicy{
		MaxAttempts:     c.Retry.MaxAttempts,
		InitialInterval: c.Retry.InitialInterval,
		MaxInterval:     c.Retry.MaxInterval,
	}, logger, mc)

	a.replenisher = replenish.New(replenish.Config{
		Code:         c.Code,
		BatchSize:    c.BatchSize,
		Timeout:      c.OperationTimeout,
		SingleFlight: c.SingleFlightRefill,
		Logger:       logger,
		Metrics:      mc,
		Hooks:        h,
	}, a.segment, a.buffer)

	logger.Debug("allocator created",
		"code", c.Code,
		"batch_size", c.BatchSize,
		"apply_threshold", c.ApplyThreshold,
		"single_flight_refill", c.SingleFlightRefill,
		"coalesce_slow_path", c.CoalesceSlowPath,
	)

	return a, nil
}

// GenerateID returns the next id for the allocator's code.
//
// The fast path dequeues from the buffer without I/O and, when the remaining
// count drops to ApplyThreshold or below, triggers a background refill without
// waiting for it. The slow path runs when the buffer is empty: it reserves a
// range from the store, returns its first id and buffers the rest.
//
// Background refill failures never surface here.
//
// Parameters:
//   - ctx: Bounds the slow path's store round trip (together with OperationTimeout)
//
// Returns:
//   - int64: A unique id (>= 1)
//   - error: ErrClosed after Close; on the slow path, ErrStoreUnavailable
//     (with ErrTimeout when the deadline expired) or ErrStoreConflictExhausted
func (a *Allocator) GenerateID(ctx context.Context) (int64, error) {
	if a.closed.Load() {
		return 0, ErrClosed
	}

	if id, ok := a.dequeue(); ok {
		return id, nil
	}

	if a.cfg.CoalesceSlowPath {
		return a.generateCoalesced(ctx)
	}

	r, err := a.acquire(ctx)
	if err != nil {
		return 0, err
	}

	// no partial enqueue: the rest of the range is buffered only after the
	// acquisition succeeded
	a.buffer.Enqueue(r.Rest())
	a.metrics.RecordIDServed(a.cfg.Code, PathSlow)
	a.metrics.RecordBufferOccupancy(a.cfg.Code, a.buffer.Count())

	return r.Start, nil
}

// dequeue is the fast path.
func (a *Allocator) dequeue() (int64, bool) {
	id, ok := a.buffer.TryDequeue()
	if !ok {
		return 0, false
	}

	remaining := a.buffer.Count()
	a.metrics.RecordIDServed(a.cfg.Code, PathFast)
	a.metrics.RecordBufferOccupancy(a.cfg.Code, remaining)

	if a.cfg.ApplyThreshold > 0 && int64(remaining) <= a.cfg.ApplyThreshold {
		a.replenisher.Trigger()
	}

	return id, true
}

// generateCoalesced is the slow path when CoalesceSlowPath is set.
//
// Concurrent callers share one acquisition; its whole range goes into the
// buffer and every caller, the one that ran it included, competes for ids
// there. A caller that loses every id to others tries again.
func (a *Allocator) generateCoalesced(ctx context.Context) (int64, error) {
	for {
		ch := a.coalesce.DoChan(a.cfg.Code, func() (any, error) {
			// a flight that just finished may already have refilled the buffer
			if a.buffer.Count() > 0 {
				return IDRange{}, nil
			}

			// detached from any one caller so a canceled waiter can't fail the others
			r, err := a.acquire(a.ctx)
			if err != nil {
				return nil, err
			}
			a.buffer.Enqueue(r)

			return r, nil
		})

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("acquire %q: %w: %w: %w", a.cfg.Code, ErrStoreUnavailable, ErrTimeout, ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				return 0, res.Err
			}
		}

		if id, ok := a.buffer.TryDequeue(); ok {
			a.metrics.RecordIDServed(a.cfg.Code, PathSlow)
			a.metrics.RecordBufferOccupancy(a.cfg.Code, a.buffer.Count())

			return id, nil
		}

		if a.closed.Load() {
			return 0, ErrClosed
		}
	}
}

// acquire reserves one range for the slow path.
func (a *Allocator) acquire(ctx context.Context) (IDRange, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.OperationTimeout)
	defer cancel()

	r, err := a.segment.Allocate(ctx, a.cfg.Code, a.cfg.BatchSize)
	a.metrics.RecordRefill(a.cfg.Code, RefillSlowPath, err == nil)
	if err != nil {
		a.logger.Warn("slow path range acquisition failed", "code", a.cfg.Code, "error", err)
		return IDRange{}, err
	}

	a.logger.Debug("slow path range acquired", "code", a.cfg.Code, "range", r.String())

	// Run hook in background to avoid blocking the caller
	go func() {
		if err := a.hooks.OnRangeAcquired(a.ctx, a.cfg.Code, r, RefillSlowPath); err != nil {
			a.logger.Error("range acquired hook error", "code", a.cfg.Code, "error", err)
		}
	}()

	return r, nil
}

// Buffered returns the number of ids reserved but not yet issued.
func (a *Allocator) Buffered() int {
	return a.buffer.Count()
}

// Code returns the allocator's counter name.
func (a *Allocator) Code() string {
	return a.cfg.Code
}

// Config returns a copy of the effective configuration.
func (a *Allocator) Config() Config {
	return a.cfg
}

// Close stops background refills and waits for running ones to finish.
//
// Buffered ids are discarded; they are never reissued. Later GenerateID calls
// return ErrClosed. Close is idempotent.
//
// Parameters:
//   - ctx: Bounds the wait for running refills
//
// Returns:
//   - error: ctx error if refills did not stop in time
func (a *Allocator) Close(ctx context.Context) error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.cancel()
	err := a.replenisher.Close(ctx)

	var discarded int64
	for _, r := range a.buffer.Drain() {
		discarded += r.Size()
	}
	a.metrics.RecordBufferOccupancy(a.cfg.Code, 0)
	a.logger.Info("allocator closed", "code", a.cfg.Code, "discarded_ids", discarded)

	return err
}
