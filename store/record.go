package store

import (
	"fmt"
	"math"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/arloliu/segid/types"
)

// counterRecord is the persisted body of a counter.
type counterRecord struct {
	Value     int64 `msgpack:"value"`
	UpdatedAt int64 `msgpack:"updated_at"`

	// Revision is only kept by stores without a native version token (bbolt).
	Revision uint64 `msgpack:"revision,omitempty"`
}

func encodeRecord(value int64, revision uint64) ([]byte, error) {
	data, err := msgpack.Marshal(&counterRecord{Value: value, UpdatedAt: time.Now().UnixMilli(), Revision: revision})
	if err != nil {
		return nil, fmt.Errorf("encode counter record: %w", err)
	}

	return data, nil
}

func decodeRecord(data []byte) (counterRecord, error) {
	var rec counterRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return counterRecord{}, fmt.Errorf("decode counter record: %w", err)
	}
	if rec.Value < 0 {
		return counterRecord{}, fmt.Errorf("decode counter record: negative value %d", rec.Value)
	}

	return rec, nil
}

// advance returns the range that follows current and the new counter value.
func advance(current, batchSize int64) (types.IDRange, error) {
	if batchSize <= 0 {
		return types.IDRange{}, fmt.Errorf("%w: batch size must be positive, got %d", types.ErrInvalidConfig, batchSize)
	}
	if current > math.MaxInt64-batchSize {
		return types.IDRange{}, fmt.Errorf("%w: value %d + %d", types.ErrCounterOverflow, current, batchSize)
	}

	return types.IDRange{Start: current + 1, End: current + batchSize}, nil
}
