package segment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/segid/internal/metrics"
	"github.com/arloliu/segid/store"
	segidtest "github.com/arloliu/segid/testing"
	"github.com/arloliu/segid/types"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestAllocate_ConsecutiveRanges(t *testing.T) {
	a := New(store.NewMemory(), fastPolicy(3), segidtest.NewTestLogger(t), nil)

	r1, err := a.Allocate(context.Background(), "orders", 5)
	require.NoError(t, err)
	require.Equal(t, types.IDRange{Start: 1, End: 5}, r1)

	r2, err := a.Allocate(context.Background(), "orders", 5)
	require.NoError(t, err)
	require.Equal(t, types.IDRange{Start: 6, End: 10}, r2)
}

func TestAllocate_InvalidInputMakesNoStoreCall(t *testing.T) {
	counting := segidtest.NewCountingStore(store.NewMemory())
	a := New(counting, fastPolicy(3), nil, nil)

	_, err := a.Allocate(context.Background(), "", 5)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, err = a.Allocate(context.Background(), "orders", 0)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	_, err = a.Allocate(context.Background(), "orders", -3)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	require.Zero(t, counting.Calls())
}

func TestAllocate_RetriesConflicts(t *testing.T) {
	conflicting := segidtest.NewConflictingStore(store.NewMemory(), 2)
	a := New(conflicting, fastPolicy(5), segidtest.NewTestLogger(t), nil)

	r, err := a.Allocate(context.Background(), "orders", 10)
	require.NoError(t, err)
	require.Equal(t, types.IDRange{Start: 1, End: 10}, r)
	require.Equal(t, 3, conflicting.Calls())
}

func TestAllocate_ConflictsExhausted(t *testing.T) {
	conflicting := segidtest.NewConflictingStore(store.NewMemory(), -1)
	a := New(conflicting, fastPolicy(4), nil, nil)

	_, err := a.Allocate(context.Background(), "orders", 10)
	require.ErrorIs(t, err, types.ErrStoreConflictExhausted)
	require.ErrorIs(t, err, types.ErrStoreConflict)
	require.True(t, types.IsStoreUnavailable(err))
	require.Equal(t, 4, conflicting.Calls())
}

func TestAllocate_OtherFailuresAreNotRetried(t *testing.T) {
	failing := segidtest.NewFailingStore(store.NewMemory())
	a := New(failing, fastPolicy(5), nil, nil)

	_, err := a.Allocate(context.Background(), "orders", 10)
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
	require.ErrorIs(t, err, segidtest.ErrInjected)
	require.NotErrorIs(t, err, types.ErrTimeout)
	require.Equal(t, 1, failing.Calls())

	failing.Heal()
	r, err := a.Allocate(context.Background(), "orders", 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Start)
}

func TestAllocate_DeadlineBecomesTimeout(t *testing.T) {
	blocking := segidtest.NewBlockingStore(store.NewMemory())
	a := New(blocking, fastPolicy(5), nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Allocate(ctx, "orders", 10)
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
	require.ErrorIs(t, err, types.ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, blocking.Calls())
}

func TestAllocate_RejectsMalformedRange(t *testing.T) {
	a := New(shortStore{}, fastPolicy(3), nil, nil)

	_, err := a.Allocate(context.Background(), "orders", 10)
	require.ErrorIs(t, err, types.ErrInvalidRange)
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestAllocate_RecordsMetrics(t *testing.T) {
	mc := &recordingMetrics{NopMetrics: metrics.NewNop()}
	conflicting := segidtest.NewConflictingStore(store.NewMemory(), 1)
	a := New(conflicting, fastPolicy(3), nil, mc)

	_, err := a.Allocate(context.Background(), "orders", 3)
	require.NoError(t, err)
	require.Equal(t, 2, mc.attempts)
	require.Equal(t, 1, mc.successes)
	require.Equal(t, 1, mc.conflicts)
}

func TestNew_AppliesPolicyDefaults(t *testing.T) {
	a := New(store.NewMemory(), RetryPolicy{}, nil, nil)
	require.Equal(t, DefaultRetryPolicy(), a.Policy())

	a = New(store.NewMemory(), RetryPolicy{MaxAttempts: 2, InitialInterval: time.Second, MaxInterval: time.Millisecond}, nil, nil)
	require.Equal(t, time.Second, a.Policy().MaxInterval)
}

type shortStore struct{}

func (shortStore) AcquireRange(_ context.Context, _ string, batchSize int64) (types.IDRange, error) {
	if batchSize < 2 {
		return types.IDRange{}, errors.New("unexpected batch size")
	}

	return types.IDRange{Start: 1, End: batchSize - 1}, nil
}

type recordingMetrics struct {
	*metrics.NopMetrics
	attempts  int
	successes int
	conflicts int
}

func (m *recordingMetrics) RecordAcquireDuration(_ string, _ float64, success bool) {
	m.attempts++
	if success {
		m.successes++
	}
}

func (m *recordingMetrics) RecordConflictRetry(_ string) {
	m.conflicts++
}
