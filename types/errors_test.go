package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("errors.Is works correctly", func(t *testing.T) {
		require.True(t, errors.Is(ErrStoreConflict, ErrStoreConflict))
		require.False(t, errors.Is(ErrStoreConflict, ErrStoreConflictExhausted))

		wrapped := fmt.Errorf("acquire range for %q: %w", "orders", ErrStoreUnavailable)
		require.True(t, errors.Is(wrapped, ErrStoreUnavailable))
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			// Allocator errors
			ErrInvalidConfig,
			ErrCounterStoreRequired,
			ErrClosed,
			// CounterStore errors
			ErrStoreUnavailable,
			ErrStoreConflict,
			ErrStoreConflictExhausted,
			ErrTimeout,
			ErrCounterOverflow,
			ErrCounterNotFound,
			ErrInvalidRange,
			ErrConnectivity,
		}

		for i, err1 := range allErrors {
			for j, err2 := range allErrors {
				if i == j {
					require.True(t, errors.Is(err1, err2), "error should equal itself: %v", err1)
				} else {
					require.False(t, errors.Is(err1, err2), "errors should be distinct: %v vs %v", err1, err2)
				}
			}
		}
	})
}

func TestIsStoreUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unavailable", err: ErrStoreUnavailable, want: true},
		{name: "wrapped timeout", err: fmt.Errorf("slow path: %w", ErrTimeout), want: true},
		{name: "exhausted", err: fmt.Errorf("%w: %w", ErrStoreConflictExhausted, ErrStoreConflict), want: true},
		{name: "single conflict", err: ErrStoreConflict, want: false},
		{name: "config", err: ErrInvalidConfig, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsStoreUnavailable(tt.err))
		})
	}
}
