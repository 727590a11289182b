// Package types provides core type definitions and interfaces for the segid library.
//
// This package contains shared types that are used across multiple packages in the
// segid library. By keeping these types in a separate package, we avoid import cycles
// between the main segid package and its internal implementations.
//
// Key types:
//   - IDRange: Inclusive block of ids reserved in one store round trip
//   - CounterRecord: Persistent counter state for one code
//   - CounterStore: Keyed atomic counter contract implemented by the store package
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
//   - Hooks: Optional allocator lifecycle callbacks
package types
