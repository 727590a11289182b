package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/segid/internal/hash"
	"github.com/arloliu/segid/internal/kvutil"
	"github.com/arloliu/segid/internal/natsutil"
	"github.com/arloliu/segid/types"
)

// BucketConfig configures the NATS JetStream KV bucket that holds counters.
type BucketConfig struct {
	// Bucket is the KV bucket name.
	Bucket string `yaml:"bucket"`

	// Description is stored with the bucket.
	Description string `yaml:"description"`

	// Replicas is the number of stream replicas (1 for a single server).
	Replicas int `yaml:"replicas"`

	// Storage is "file" or "memory". Counters must survive server restarts,
	// so production buckets use file storage.
	Storage string `yaml:"storage"`

	// MaxAttempts bounds bucket creation retries at startup.
	MaxAttempts int `yaml:"maxAttempts"`
}

// DefaultBucketConfig returns the production bucket configuration.
func DefaultBucketConfig() BucketConfig {
	return BucketConfig{
		Bucket:      "segid-counters",
		Description: "segid counter records",
		Replicas:    1,
		Storage:     "file",
		MaxAttempts: kvutil.DefaultMaxAttempts,
	}
}

// Validate checks the bucket configuration.
func (c BucketConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket name must not be empty", types.ErrInvalidConfig)
	}
	if c.Replicas < 0 {
		return fmt.Errorf("%w: replicas must be >= 0, got %d", types.ErrInvalidConfig, c.Replicas)
	}
	if _, err := c.storageType(); err != nil {
		return err
	}

	return nil
}

func (c BucketConfig) storageType() (jetstream.StorageType, error) {
	switch strings.ToLower(c.Storage) {
	case "", "file":
		return jetstream.FileStorage, nil
	case "memory":
		return jetstream.MemoryStorage, nil
	default:
		return 0, fmt.Errorf("%w: unknown storage %q", types.ErrInvalidConfig, c.Storage)
	}
}

// NATSKV is a CounterStore backed by a NATS JetStream KV bucket.
//
// Each code is one key holding a msgpack counter record. Creation uses kv.Create
// and increments use kv.Update with the revision that was read, so two writers
// racing on the same base value cannot both succeed; the loser gets
// types.ErrStoreConflict.
//
// The bucket must keep history 1 and no TTL: an expired or deleted counter key
// would restart the counter at 0 and reissue ids.
type NATSKV struct {
	kv     jetstream.KeyValue
	logger types.Logger
}

var (
	_ types.CounterStore  = (*NATSKV)(nil)
	_ types.CounterReader = (*NATSKV)(nil)
)

// NewNATSKV wraps an existing KV bucket.
//
// Parameters:
//   - kv: The counter bucket
//   - opts: Optional configuration (logger)
//
// Returns:
//   - *NATSKV: Counter store
func NewNATSKV(kv jetstream.KeyValue, opts ...Option) *NATSKV {
	o := applyOptions(opts)

	return &NATSKV{kv: kv, logger: o.logger}
}

// OpenNATSKV creates or opens the counter bucket described by cfg.
//
// Concurrent processes may call OpenNATSKV for the same bucket; losers of the
// creation race open the existing bucket.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - cfg: Bucket configuration (zero fields take DefaultBucketConfig values)
//   - opts: Optional configuration (logger)
//
// Returns:
//   - *NATSKV: Counter store
//   - error: ErrInvalidConfig for a bad cfg, or the bucket creation failure
func OpenNATSKV(ctx context.Context, js jetstream.JetStream, cfg BucketConfig, opts ...Option) (*NATSKV, error) {
	defaults := DefaultBucketConfig()
	if cfg.Bucket == "" {
		cfg.Bucket = defaults.Bucket
	}
	if cfg.Description == "" {
		cfg.Description = defaults.Description
	}
	if cfg.Replicas == 0 {
		cfg.Replicas = defaults.Replicas
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	storage, _ := cfg.storageType()

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: cfg.Description,
		History:     1,
		Storage:     storage,
		Replicas:    cfg.Replicas,
	}, cfg.MaxAttempts)
	if err != nil {
		return nil, natsutil.Classify("open counter bucket", err)
	}

	return NewNATSKV(kv, opts...), nil
}

// Bucket returns the underlying KV bucket.
func (s *NATSKV) Bucket() jetstream.KeyValue {
	return s.kv
}

// AcquireRange implements types.CounterStore.
//
// One call is one optimistic attempt; retries are the caller's concern.
func (s *NATSKV) AcquireRange(ctx context.Context, code string, batchSize int64) (types.IDRange, error) {
	key := hash.CounterKey(code)

	entry, err := s.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		r, err := advance(0, batchSize)
		if err != nil {
			return types.IDRange{}, err
		}
		data, err := encodeRecord(r.End, 0)
		if err != nil {
			return types.IDRange{}, err
		}

		rev, err := s.kv.Create(ctx, key, data)
		if err != nil {
			return types.IDRange{}, natsutil.Classify("create counter "+key, err)
		}
		s.logger.Debug("counter created", "code", code, "key", key, "revision", rev)

		return r, nil
	}
	if err != nil {
		return types.IDRange{}, natsutil.Classify("get counter "+key, err)
	}

	rec, err := decodeRecord(entry.Value())
	if err != nil {
		return types.IDRange{}, fmt.Errorf("counter %s: %w", key, err)
	}

	r, err := advance(rec.Value, batchSize)
	if err != nil {
		return types.IDRange{}, err
	}
	data, err := encodeRecord(r.End, 0)
	if err != nil {
		return types.IDRange{}, err
	}

	if _, err := s.kv.Update(ctx, key, data, entry.Revision()); err != nil {
		return types.IDRange{}, natsutil.Classify("update counter "+key, err)
	}

	return r, nil
}

// Current implements types.CounterReader.
func (s *NATSKV) Current(ctx context.Context, code string) (types.CounterRecord, error) {
	key := hash.CounterKey(code)

	entry, err := s.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return types.CounterRecord{}, fmt.Errorf("%w: %s", types.ErrCounterNotFound, code)
	}
	if err != nil {
		return types.CounterRecord{}, natsutil.Classify("get counter "+key, err)
	}

	rec, err := decodeRecord(entry.Value())
	if err != nil {
		return types.CounterRecord{}, fmt.Errorf("counter %s: %w", key, err)
	}

	return types.CounterRecord{Key: key, Value: rec.Value, Revision: entry.Revision()}, nil
}
