package types

import "context"

// RefillReason describes why a range was acquired from the counter store.
type RefillReason string

const (
	// RefillSlowPath is a synchronous acquisition made because the buffer was empty.
	RefillSlowPath RefillReason = "slow_path"

	// RefillThreshold is a background acquisition triggered by low buffer occupancy.
	RefillThreshold RefillReason = "threshold"
)

// String implements fmt.Stringer.
func (r RefillReason) String() string {
	return string(r)
}

// Hooks defines callbacks for allocator lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so they never block GenerateID. Hook errors are logged but don't fail
// allocator operations.
//
// Example:
//
//	hooks := &segid.Hooks{
//	    OnRangeAcquired: func(ctx context.Context, code string, r segid.IDRange, reason segid.RefillReason) error {
//	        log.Printf("reserved %s for %s (%s)", r, code, reason)
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnRangeAcquired is called after a range was reserved from the store.
	OnRangeAcquired func(ctx context.Context, code string, r IDRange, reason RefillReason) error

	// OnRefillFailed is called when a background refill is abandoned.
	OnRefillFailed func(ctx context.Context, code string, err error) error
}
