// Package hooks provides default implementations of allocator lifecycle hooks.
package hooks

import (
	"context"

	"github.com/arloliu/segid/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, string, types.IDRange, types.RefillReason) error = (*NopHooks)(nil).OnRangeAcquired
	_ func(context.Context, string, error) error                            = (*NopHooks)(nil).OnRefillFailed
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnRangeAcquired: h.OnRangeAcquired,
		OnRefillFailed:  h.OnRefillFailed,
	}
}

// Merge returns custom with any nil callback replaced by its no-op counterpart.
//
// Parameters:
//   - custom: User-supplied hooks (may be nil)
//
// Returns:
//   - types.Hooks: Hooks where every callback is non-nil
func Merge(custom *types.Hooks) types.Hooks {
	merged := NewNop()
	if custom == nil {
		return merged
	}
	if custom.OnRangeAcquired != nil {
		merged.OnRangeAcquired = custom.OnRangeAcquired
	}
	if custom.OnRefillFailed != nil {
		merged.OnRefillFailed = custom.OnRefillFailed
	}

	return merged
}

// OnRangeAcquired is a no-op implementation.
func (h *NopHooks) OnRangeAcquired(_ context.Context, _ string, _ types.IDRange, _ types.RefillReason) error {
	return nil
}

// OnRefillFailed is a no-op implementation.
func (h *NopHooks) OnRefillFailed(_ context.Context, _ string, _ error) error {
	return nil
}
