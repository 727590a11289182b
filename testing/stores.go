package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/segid/types"
)

// ErrInjected is returned by stores in this package when they simulate a failure.
var ErrInjected = errors.New("injected store failure")

// CountingStore wraps a CounterStore and records every AcquireRange call.
type CountingStore struct {
	inner types.CounterStore

	mu     sync.Mutex
	calls  int
	ranges []types.IDRange
	signal chan struct{}
}

var _ types.CounterStore = (*CountingStore)(nil)

// NewCountingStore wraps inner.
func NewCountingStore(inner types.CounterStore) *CountingStore {
	return &CountingStore{inner: inner, signal: make(chan struct{}, 1024)}
}

// AcquireRange forwards to the wrapped store and records the call.
func (s *CountingStore) AcquireRange(ctx context.Context, code string, batchSize int64) (types.IDRange, error) {
	r, err := s.inner.AcquireRange(ctx, code, batchSize)

	s.mu.Lock()
	s.calls++
	if err == nil {
		s.ranges = append(s.ranges, r)
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}

	return r, err
}

// Calls returns the number of AcquireRange calls made so far.
func (s *CountingStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

// Ranges returns the ranges handed out so far, in completion order.
func (s *CountingStore) Ranges() []types.IDRange {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.IDRange(nil), s.ranges...)
}

// Signal returns a channel that receives after each completed call.
func (s *CountingStore) Signal() <-chan struct{} {
	return s.signal
}

// ConflictingStore returns ErrStoreConflict for the first n calls, then forwards.
type ConflictingStore struct {
	inner     types.CounterStore
	remaining atomic.Int64
	calls     atomic.Int64
}

var _ types.CounterStore = (*ConflictingStore)(nil)

// NewConflictingStore wraps inner and injects n conflicts. Use n < 0 to conflict forever.
func NewConflictingStore(inner types.CounterStore, n int64) *ConflictingStore {
	s := &ConflictingStore{inner: inner}
	s.remaining.Store(n)

	return s
}

// AcquireRange returns a conflict while the budget lasts.
func (s *ConflictingStore) AcquireRange(ctx context.Context, code string, batchSize int64) (types.IDRange, error) {
	s.calls.Add(1)

	if left := s.remaining.Load(); left < 0 || (left > 0 && s.remaining.Add(-1) >= 0) {
		return types.IDRange{}, fmt.Errorf("%w: %w", types.ErrStoreConflict, ErrInjected)
	}

	return s.inner.AcquireRange(ctx, code, batchSize)
}

// Calls returns the number of AcquireRange calls made so far.
func (s *ConflictingStore) Calls() int {
	return int(s.calls.Load())
}

// FailingStore fails every call with ErrInjected until Heal is called.
type FailingStore struct {
	inner   types.CounterStore
	healed  atomic.Bool
	calls   atomic.Int64
	blockCh chan struct{}
}

var _ types.CounterStore = (*FailingStore)(nil)

// NewFailingStore wraps inner in a failing state.
func NewFailingStore(inner types.CounterStore) *FailingStore {
	return &FailingStore{inner: inner}
}

// NewBlockingStore wraps inner so every call blocks until its context ends.
//
// Useful for deadline tests; Heal unblocks future calls.
func NewBlockingStore(inner types.CounterStore) *FailingStore {
	return &FailingStore{inner: inner, blockCh: make(chan struct{})}
}

// AcquireRange fails (or blocks) until healed.
func (s *FailingStore) AcquireRange(ctx context.Context, code string, batchSize int64) (types.IDRange, error) {
	s.calls.Add(1)

	if !s.healed.Load() {
		if s.blockCh != nil {
			select {
			case <-ctx.Done():
				return types.IDRange{}, ctx.Err()
			case <-s.blockCh:
			}
		} else {
			return types.IDRange{}, ErrInjected
		}
	}

	return s.inner.AcquireRange(ctx, code, batchSize)
}

// Heal makes subsequent calls forward to the wrapped store.
func (s *FailingStore) Heal() {
	if s.healed.CompareAndSwap(false, true) && s.blockCh != nil {
		close(s.blockCh)
	}
}

// Calls returns the number of AcquireRange calls made so far.
func (s *FailingStore) Calls() int {
	return int(s.calls.Load())
}

// LossyStore commits ranges in the wrapped store and then drops the first n of them,
// returning an error as if the response was lost on the way back.
type LossyStore struct {
	inner     types.CounterStore
	remaining atomic.Int64

	mu   sync.Mutex
	lost []types.IDRange
}

var _ types.CounterStore = (*LossyStore)(nil)

// NewLossyStore wraps inner and drops the next n committed ranges.
func NewLossyStore(inner types.CounterStore, n int64) *LossyStore {
	s := &LossyStore{inner: inner}
	s.remaining.Store(n)

	return s
}

// AcquireRange commits in the wrapped store and drops the result while the budget lasts.
func (s *LossyStore) AcquireRange(ctx context.Context, code string, batchSize int64) (types.IDRange, error) {
	r, err := s.inner.AcquireRange(ctx, code, batchSize)
	if err != nil {
		return r, err
	}

	if s.remaining.Add(-1) >= 0 {
		s.mu.Lock()
		s.lost = append(s.lost, r)
		s.mu.Unlock()

		return types.IDRange{}, fmt.Errorf("response for %s lost: %w", r, ErrInjected)
	}

	return r, nil
}

// Lost returns the ranges that were committed but never returned.
func (s *LossyStore) Lost() []types.IDRange {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.IDRange(nil), s.lost...)
}
