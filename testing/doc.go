// Package testing provides test utilities for the segid library.
//
// It follows Go's convention of shipping testing helpers in a dedicated package
// (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single in-process NATS server with JetStream
//   - CreateCounterKV: KV bucket configured like a production counter bucket
//   - CountingStore: Records every AcquireRange call and its result
//   - ConflictingStore: Injects optimistic-concurrency conflicts
//   - FailingStore: Fails every call until healed (NewBlockingStore blocks instead)
//   - LossyStore: Commits ranges in the wrapped store, then drops them
//
// Example usage:
//
//	import (
//	    "testing"
//	    segidtest "github.com/arloliu/segid/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    counting := segidtest.NewCountingStore(store.NewMemory())
//	    // ...
//	    require.Equal(t, 1, counting.Calls())
//	}
package testing
