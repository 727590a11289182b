// Package store provides CounterStore implementations for segid.
//
// Available stores:
//   - NATSKV: NATS JetStream KeyValue bucket, revision-guarded updates (production, multi-host)
//   - Bolt: bbolt file, one write transaction per acquisition (single host)
//   - Memory: in-process map with compare-and-swap records (tests, embedding)
//
// All stores persist the same counter record and satisfy both types.CounterStore and
// types.CounterReader.
//
// A counter is the only record of which ids were issued. Deleting or purging a
// counter key restarts it from zero, after which ids are issued again.
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	counters, err := store.OpenNATSKV(ctx, js, store.DefaultBucketConfig())
//	if err != nil {
//	    return err
//	}
//	alloc, err := segid.New(&cfg, counters)
package store
