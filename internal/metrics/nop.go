// Package metrics provides MetricsCollector implementations for the segid library.
package metrics

import "github.com/arloliu/segid/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	alloc, err := segid.New(&cfg, store, segid.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// AllocatorMetrics implementation

// RecordIDServed discards the served-id metric.
func (n *NopMetrics) RecordIDServed(_ /* code */ string, _ /* path */ string) {
	// No-op
}

// RecordBufferOccupancy discards the buffer occupancy metric.
func (n *NopMetrics) RecordBufferOccupancy(_ /* code */ string, _ /* count */ int) {
	// No-op
}

// RecordRefill discards the refill metric.
func (n *NopMetrics) RecordRefill(_ /* code */ string, _ /* reason */ types.RefillReason, _ /* success */ bool) {
	// No-op
}

// RecordRefillSkipped discards the skipped-refill metric.
func (n *NopMetrics) RecordRefillSkipped(_ /* code */ string) {
	// No-op
}

// StoreMetrics implementation

// RecordAcquireDuration discards the store latency metric.
func (n *NopMetrics) RecordAcquireDuration(_ /* code */ string, _ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// RecordConflictRetry discards the conflict retry metric.
func (n *NopMetrics) RecordConflictRetry(_ /* code */ string) {
	// No-op
}
