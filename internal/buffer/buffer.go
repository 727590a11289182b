// Package buffer holds ids that were reserved from the counter store but not yet issued.
package buffer

import (
	"slices"
	"sync"

	"github.com/arloliu/segid/types"
)

// Buffer is a thread-safe FIFO of pending ids.
//
// Ids are kept as ranges rather than individual values, so enqueuing a batch of
// 100k ids costs one slice append. Ranges are ordered by Start; since ranges from
// one store are disjoint, dequeued ids are non-decreasing as long as refills land
// in acquisition order, and a late-landing lower range is still served before any
// higher one still queued.
//
// All operations are serialized by a single mutex and are linearizable with
// respect to each other.
type Buffer struct {
	mu     sync.Mutex
	ranges []types.IDRange
	count  int64
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// TryDequeue removes and returns the lowest pending id.
//
// Returns:
//   - int64: The id (0 when the buffer is empty)
//   - bool: false when the buffer is empty
func (b *Buffer) TryDequeue() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.ranges) == 0 {
		return 0, false
	}

	head := &b.ranges[0]
	id := head.Start
	head.Start++
	b.count--

	if head.Empty() {
		b.ranges[0] = types.IDRange{}
		b.ranges = b.ranges[1:]
		if len(b.ranges) == 0 {
			// drop the backing array so a long-lived buffer doesn't pin it
			b.ranges = nil
		}
	}

	return id, true
}

// Enqueue appends the ids of r, Start..End, in increasing order.
//
// Empty ranges are ignored. A range whose Start is below a queued range is
// inserted ahead of it.
func (b *Buffer) Enqueue(r types.IDRange) {
	if r.Empty() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.ranges)
	if n == 0 || b.ranges[n-1].Start < r.Start {
		b.ranges = append(b.ranges, r)
	} else {
		idx, _ := slices.BinarySearchFunc(b.ranges, r.Start, func(q types.IDRange, start int64) int {
			switch {
			case q.Start < start:
				return -1
			case q.Start > start:
				return 1
			default:
				return 0
			}
		})
		b.ranges = slices.Insert(b.ranges, idx, r)
	}

	b.count += r.Size()
}

// Count returns the exact number of pending ids.
func (b *Buffer) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return int(b.count)
}

// Drain removes and returns all pending ranges in dequeue order.
func (b *Buffer) Drain() []types.IDRange {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.ranges
	b.ranges = nil
	b.count = 0

	return out
}
