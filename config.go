package segid

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// RetryConfig bounds conflict retries on a single range acquisition.
type RetryConfig struct {
	// MaxAttempts is the total number of store calls per acquisition, including the first.
	// Default: 5
	MaxAttempts int `yaml:"maxAttempts"`

	// InitialInterval is the backoff before the first retry.
	// Default: 10ms
	InitialInterval time.Duration `yaml:"initialInterval"`

	// MaxInterval caps the exponential backoff between retries.
	// Default: 500ms
	MaxInterval time.Duration `yaml:"maxInterval"`
}

// Config is the configuration for an Allocator.
//
// Code, BatchSize and ApplyThreshold are fixed for the allocator's lifetime.
// All duration fields accept standard Go duration strings like "500ms", "5s".
type Config struct {
	// Code is the logical counter name. Ids are unique per code.
	Code string `yaml:"code"`

	// BatchSize is the number of ids reserved from the store per round trip.
	// Larger batches mean fewer round trips and more ids lost on restart.
	BatchSize int64 `yaml:"batchSize"`

	// ApplyThreshold starts a background refill once a fast-path dequeue leaves
	// this many ids or fewer in the buffer. 0 disables background refills.
	//
	// Recommendation: large enough to cover the ids consumed during one store round trip.
	ApplyThreshold int64 `yaml:"applyThreshold"`

	// OperationTimeout bounds a single range acquisition, retries included.
	// Default: 5 seconds
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// Retry controls conflict retries.
	Retry RetryConfig `yaml:"retry"`

	// SingleFlightRefill allows at most one background refill at a time.
	// Default: false (overlapping refills are tolerated; each reserves a distinct range)
	SingleFlightRefill bool `yaml:"singleFlightRefill"`

	// CoalesceSlowPath lets concurrent callers that find the buffer empty share
	// one store round trip instead of each acquiring a range.
	// Default: false
	CoalesceSlowPath bool `yaml:"coalesceSlowPath"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Code and BatchSize have no defaults and must be set by the caller.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		OperationTimeout: 5 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:     5,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     500 * time.Millisecond,
		},
	}
}

// SetDefaults fills in missing timing and retry values with production defaults.
//
// Code, BatchSize and ApplyThreshold are left untouched so that a missing
// value is reported by Validate instead of silently defaulted.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = defaults.Retry.MaxAttempts
	}
	if cfg.Retry.InitialInterval == 0 {
		cfg.Retry.InitialInterval = defaults.Retry.InitialInterval
	}
	if cfg.Retry.MaxInterval == 0 {
		cfg.Retry.MaxInterval = defaults.Retry.MaxInterval
	}
}

// Validate checks configuration constraints.
//
// Hard Validation Rules:
//   - Code is non-empty
//   - BatchSize > 0
//   - ApplyThreshold >= 0
//   - OperationTimeout > 0
//   - Retry.MaxAttempts >= 1, intervals > 0, MaxInterval >= InitialInterval
//
// Returns:
//   - error: ErrInvalidConfig wrapped with a clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.Code == "" {
		return fmt.Errorf("%w: Code must not be empty", ErrInvalidConfig)
	}

	if cfg.BatchSize <= 0 {
		return fmt.Errorf("%w: BatchSize must be > 0, got %d", ErrInvalidConfig, cfg.BatchSize)
	}

	if cfg.ApplyThreshold < 0 {
		return fmt.Errorf("%w: ApplyThreshold must be >= 0, got %d", ErrInvalidConfig, cfg.ApplyThreshold)
	}

	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("%w: OperationTimeout must be > 0, got %v", ErrInvalidConfig, cfg.OperationTimeout)
	}

	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: Retry.MaxAttempts must be >= 1, got %d", ErrInvalidConfig, cfg.Retry.MaxAttempts)
	}

	if cfg.Retry.InitialInterval <= 0 || cfg.Retry.MaxInterval <= 0 {
		return fmt.Errorf("%w: Retry intervals must be > 0, got initial=%v max=%v",
			ErrInvalidConfig, cfg.Retry.InitialInterval, cfg.Retry.MaxInterval)
	}

	if cfg.Retry.MaxInterval < cfg.Retry.InitialInterval {
		return fmt.Errorf(
			"%w: Retry.MaxInterval (%v) must be >= Retry.InitialInterval (%v)",
			ErrInvalidConfig, cfg.Retry.MaxInterval, cfg.Retry.InitialInterval,
		)
	}

	return nil
}

// ValidateWithWarnings logs warnings for valid but non-recommended values.
//
// This is called after Validate() in New() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.ApplyThreshold >= cfg.BatchSize {
		logger.Warn(
			"ApplyThreshold is not below BatchSize, every fast-path dequeue will trigger a refill",
			"code", cfg.Code,
			"applyThreshold", cfg.ApplyThreshold,
			"batchSize", cfg.BatchSize,
		)
	}

	if cfg.ApplyThreshold == 0 && cfg.BatchSize > 1 {
		logger.Info(
			"background refill disabled, callers pay a store round trip whenever the buffer runs dry",
			"code", cfg.Code,
		)
	}

	if cfg.BatchSize == 1 {
		logger.Warn("BatchSize is 1, every id costs a store round trip", "code", cfg.Code)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Retries use millisecond backoff and a larger attempt budget so heavily
// contended tests don't exhaust it. Use DefaultConfig() for production.
//
// Parameters:
//   - code: Logical counter name
//   - batchSize: Ids per store round trip
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := segid.TestConfig("orders", 10)
//	cfg.ApplyThreshold = 3
//	alloc, err := segid.New(&cfg, store.NewMemory())
func TestConfig(code string, batchSize int64) Config {
	cfg := DefaultConfig()

	cfg.Code = code
	cfg.BatchSize = batchSize
	cfg.OperationTimeout = 2 * time.Second
	cfg.Retry.MaxAttempts = 50
	cfg.Retry.InitialInterval = time.Millisecond
	cfg.Retry.MaxInterval = 5 * time.Millisecond

	return cfg
}

// ParseConfig decodes a YAML allocator configuration and applies defaults.
//
// The result is not validated; New validates it.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: Decoded configuration
//   - error: ErrInvalidConfig wrapping the YAML error
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	SetDefaults(&cfg)

	return cfg, nil
}
