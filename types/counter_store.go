package types

import (
	"context"
	"fmt"
)

// IDRange is an inclusive block of ids reserved from a counter store in one round trip.
//
// A range with End < Start is empty.
type IDRange struct {
	Start int64
	End   int64
}

// Size returns the number of ids in the range (0 for an empty range).
func (r IDRange) Size() int64 {
	if r.End < r.Start {
		return 0
	}

	return r.End - r.Start + 1
}

// Empty reports whether the range contains no ids.
func (r IDRange) Empty() bool {
	return r.End < r.Start
}

// Contains reports whether id falls inside the range.
func (r IDRange) Contains(id int64) bool {
	return id >= r.Start && id <= r.End
}

// Rest returns the range without its first id.
//
// The slow path hands Start to the caller and buffers Rest().
func (r IDRange) Rest() IDRange {
	return IDRange{Start: r.Start + 1, End: r.End}
}

// Validate checks that the range is exactly batchSize ids long and starts at 1 or above.
//
// Parameters:
//   - batchSize: The size that was requested from the store
//
// Returns:
//   - error: ErrInvalidRange wrapped with details, nil if the range is well-formed
func (r IDRange) Validate(batchSize int64) error {
	if r.Start < 1 || r.Size() != batchSize {
		return fmt.Errorf("%w: got [%d, %d], want %d ids starting at 1 or above", ErrInvalidRange, r.Start, r.End, batchSize)
	}

	return nil
}

// String implements fmt.Stringer.
func (r IDRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// CounterRecord is the persistent counter state for one code.
//
// Value is the last id handed out in any range for the code. Revision is the
// store's version token used for optimistic concurrency (NATS stream sequence,
// or a per-record version counter for the bbolt and in-memory stores).
type CounterRecord struct {
	Key      string
	Value    int64
	Revision uint64
}

// CounterStore is a keyed persistent counter with atomic range acquisition.
//
// Implementations must guarantee that two successful calls for the same code never
// return overlapping ranges, regardless of how many processes share the store.
type CounterStore interface {
	// AcquireRange reserves batchSize consecutive ids for code.
	//
	// It reads the current value V (treating a missing record as V=0), writes
	// V+batchSize guarded by a version check, and returns [V+1, V+batchSize].
	//
	// Parameters:
	//   - ctx: Context for timeout/cancellation
	//   - code: Logical counter name
	//   - batchSize: Number of ids to reserve (must be > 0)
	//
	// Returns:
	//   - IDRange: The reserved range
	//   - error: ErrStoreConflict on a lost version check (retryable),
	//     ErrCounterOverflow, or a transport/storage error
	AcquireRange(ctx context.Context, code string, batchSize int64) (IDRange, error)
}

// CounterReader is implemented by stores that can report a counter's current state.
type CounterReader interface {
	// Current returns the stored record for code, or ErrCounterNotFound.
	Current(ctx context.Context, code string) (CounterRecord, error)
}
