package store

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/segid/types"
)

type memoryRecord struct {
	value    int64
	revision uint64
}

// Memory is an in-process CounterStore.
//
// Each code maps to an atomic pointer holding an immutable record. AcquireRange
// reads the pointer and swaps in a successor; losing the swap returns
// types.ErrStoreConflict, so the store exercises the same retry path as the
// NATS store.
type Memory struct {
	records *xsync.Map[string, *atomic.Pointer[memoryRecord]]
}

var (
	_ types.CounterStore  = (*Memory)(nil)
	_ types.CounterReader = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: xsync.NewMap[string, *atomic.Pointer[memoryRecord]]()}
}

// AcquireRange implements types.CounterStore.
func (m *Memory) AcquireRange(ctx context.Context, code string, batchSize int64) (types.IDRange, error) {
	if err := ctx.Err(); err != nil {
		return types.IDRange{}, err
	}

	slot, _ := m.records.LoadOrStore(code, &atomic.Pointer[memoryRecord]{})
	cur := slot.Load()

	var value int64
	var revision uint64
	if cur != nil {
		value, revision = cur.value, cur.revision
	}

	r, err := advance(value, batchSize)
	if err != nil {
		return types.IDRange{}, err
	}

	if !slot.CompareAndSwap(cur, &memoryRecord{value: r.End, revision: revision + 1}) {
		return types.IDRange{}, fmt.Errorf("%w: %s changed since revision %d", types.ErrStoreConflict, code, revision)
	}

	return r, nil
}

// Current implements types.CounterReader.
func (m *Memory) Current(_ context.Context, code string) (types.CounterRecord, error) {
	slot, ok := m.records.Load(code)
	if !ok {
		return types.CounterRecord{}, fmt.Errorf("%w: %s", types.ErrCounterNotFound, code)
	}

	cur := slot.Load()
	if cur == nil {
		return types.CounterRecord{}, fmt.Errorf("%w: %s", types.ErrCounterNotFound, code)
	}

	return types.CounterRecord{Key: code, Value: cur.value, Revision: cur.revision}, nil
}
