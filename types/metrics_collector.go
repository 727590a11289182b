package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods are called from caller goroutines and background refills and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	AllocatorMetrics
	StoreMetrics
}

// AllocatorMetrics defines metrics for the allocator facade and its buffer.
type AllocatorMetrics interface {
	// RecordIDServed records one id handed to a caller.
	//
	// Parameters:
	//   - code: Logical counter name
	//   - path: PathFast or PathSlow
	RecordIDServed(code string, path string)

	// RecordBufferOccupancy sets the current number of buffered ids (gauge metric).
	RecordBufferOccupancy(code string, count int)

	// RecordRefill records a range acquisition outcome.
	//
	// Parameters:
	//   - code: Logical counter name
	//   - reason: RefillReason of the acquisition
	//   - success: true if a range was acquired and buffered
	RecordRefill(code string, reason RefillReason, success bool)

	// RecordRefillSkipped records a threshold trigger that did not start a refill
	// because another refill was already running.
	RecordRefillSkipped(code string)
}

// StoreMetrics defines metrics for counter store round trips.
type StoreMetrics interface {
	// RecordAcquireDuration records the latency of a single AcquireRange attempt.
	//
	// Parameters:
	//   - code: Logical counter name
	//   - duration: Time taken in seconds
	//   - success: true if the attempt returned a range
	RecordAcquireDuration(code string, duration float64, success bool)

	// RecordConflictRetry records a retry caused by an optimistic-concurrency conflict.
	RecordConflictRetry(code string)
}

// Paths reported by RecordIDServed.
const (
	PathFast = "fast"
	PathSlow = "slow"
)
