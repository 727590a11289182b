package store

import (
	"github.com/arloliu/segid/internal/logging"
	"github.com/arloliu/segid/types"
)

// Option configures a store.
type Option func(*storeOptions)

type storeOptions struct {
	logger types.Logger
}

// WithLogger sets the logger used for store diagnostics.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewNATSKV, OpenNATSKV and OpenBolt
func WithLogger(logger types.Logger) Option {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) storeOptions {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNop(o.logger)

	return o
}
