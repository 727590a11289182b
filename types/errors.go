package types

import (
	"errors"
)

// Sentinel errors for the segid library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Allocator, CounterStore, etc.)
//   - Use consistent messages across similar error types

// Allocator errors - Public API errors returned by the Allocator facade.
var (
	// ErrInvalidConfig is returned when the allocator configuration is invalid
	// (empty code, non-positive batch size, negative threshold).
	//
	// It is detected before any store call and is never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCounterStoreRequired is returned when the counter store is nil.
	ErrCounterStoreRequired = errors.New("counter store is required")

	// ErrClosed is returned when GenerateID is called on a closed allocator.
	ErrClosed = errors.New("allocator closed")
)

// CounterStore errors - Errors returned by store implementations and the segment allocator.
var (
	// ErrStoreUnavailable indicates the counter store could not complete a range acquisition.
	// Returned to callers on the slow path; logged and dropped on background refills.
	ErrStoreUnavailable = errors.New("counter store unavailable")

	// ErrStoreConflict indicates an optimistic-concurrency version conflict.
	// Conflicts are retryable; stores return it for a single failed attempt.
	ErrStoreConflict = errors.New("counter store version conflict")

	// ErrStoreConflictExhausted is returned when conflicts persist past the retry budget.
	ErrStoreConflictExhausted = errors.New("counter store conflict retries exhausted")

	// ErrTimeout indicates a store round trip exceeded its deadline or was canceled.
	// Always returned together with ErrStoreUnavailable.
	ErrTimeout = errors.New("counter store operation timed out")

	// ErrCounterOverflow is returned when advancing a counter would exceed math.MaxInt64.
	ErrCounterOverflow = errors.New("counter overflow")

	// ErrCounterNotFound is returned by CounterReader.Current when no record exists yet.
	ErrCounterNotFound = errors.New("counter not found")

	// ErrInvalidRange is returned when a store hands back a range that does not match
	// the requested batch size or starts below 1.
	ErrInvalidRange = errors.New("invalid id range")

	// ErrConnectivity indicates a NATS/KV connectivity issue.
	// This is used to distinguish network failures from application errors.
	ErrConnectivity = errors.New("connectivity issue")
)

// IsStoreUnavailable reports whether err is a store failure that a caller may retry later.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true for ErrStoreUnavailable, ErrStoreConflictExhausted and ErrTimeout
func IsStoreUnavailable(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrStoreConflictExhausted) ||
		errors.Is(err, ErrTimeout)
}
