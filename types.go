package segid

import "github.com/arloliu/segid/types"

// Re-export types from the types package.
//
// This pattern lets internal packages and stores depend on `types` without
// depending on the root `segid` package, while users still write
// `segid.IDRange`, `segid.Logger`, etc.
type (
	IDRange       = types.IDRange
	CounterRecord = types.CounterRecord
	RefillReason  = types.RefillReason
)

// Re-export interfaces from the types package for convenience.
type (
	CounterStore     = types.CounterStore
	CounterReader    = types.CounterReader
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export constants from the types package.
const (
	RefillSlowPath  = types.RefillSlowPath
	RefillThreshold = types.RefillThreshold
	PathFast        = types.PathFast
	PathSlow        = types.PathSlow
)
