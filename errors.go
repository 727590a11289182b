package segid

import "github.com/arloliu/segid/types"

// Re-export sentinel errors from the types package.
//
// Use errors.Is to check them:
//
//	id, err := alloc.GenerateID(ctx)
//	if errors.Is(err, segid.ErrStoreUnavailable) {
//	    // retry later
//	}
var (
	ErrInvalidConfig          = types.ErrInvalidConfig
	ErrCounterStoreRequired   = types.ErrCounterStoreRequired
	ErrClosed                 = types.ErrClosed
	ErrStoreUnavailable       = types.ErrStoreUnavailable
	ErrStoreConflict          = types.ErrStoreConflict
	ErrStoreConflictExhausted = types.ErrStoreConflictExhausted
	ErrTimeout                = types.ErrTimeout
	ErrCounterOverflow        = types.ErrCounterOverflow
	ErrCounterNotFound        = types.ErrCounterNotFound
	ErrInvalidRange           = types.ErrInvalidRange
	ErrConnectivity           = types.ErrConnectivity
)

// IsStoreUnavailable reports whether err is a store failure that may succeed on a later call.
func IsStoreUnavailable(err error) bool {
	return types.IsStoreUnavailable(err)
}
