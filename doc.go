// Package segid provides a segment-based unique id allocator.
//
// An Allocator hands out globally unique, non-decreasing int64 ids to many
// concurrent callers. Instead of touching shared storage for every id, it
// reserves whole ranges ("segments") from a persistent counter and serves ids
// from memory, refilling in the background before the buffer runs dry.
//
// # Quick Start
//
//	import (
//	    "github.com/arloliu/segid"
//	    "github.com/arloliu/segid/store"
//	)
//
//	js, _ := jetstream.New(nc)
//	counters, err := store.OpenNATSKV(ctx, js, store.DefaultBucketConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := segid.Config{Code: "orders", BatchSize: 1000, ApplyThreshold: 200}
//	alloc, err := segid.New(&cfg, counters)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer alloc.Close(context.Background())
//
//	id, err := alloc.GenerateID(ctx)
//
// # Guarantees
//
//   - Uniqueness: no id is returned twice for a code, across goroutines,
//     allocators and processes sharing one store
//   - Per allocator, ids come out non-decreasing
//   - Ids may be skipped (restart, lost store responses); they are never reused
//
// There is no global ordering across allocators: two processes interleave
// their ranges.
//
// # Counter Stores
//
// The store package provides three CounterStore implementations:
//
//   - store.NATSKV: NATS JetStream KV, revision-guarded updates (multi-host)
//   - store.Bolt: bbolt file (single host)
//   - store.Memory: in-process (tests)
//
// Any type implementing CounterStore can be used.
//
// # Refill Strategy
//
// With ApplyThreshold > 0, a fast-path dequeue that leaves ApplyThreshold ids or
// fewer starts a background refill. Overlapping refills are allowed by default;
// set SingleFlightRefill to allow one at a time. When the buffer is empty the
// caller pays one store round trip; set CoalesceSlowPath to let concurrent
// callers share it.
//
// # Observability
//
// Use WithLogger, WithMetrics and WithHooks to plug in logging, Prometheus
// metrics (see NewPrometheusMetrics) and lifecycle callbacks.
package segid
