package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/arloliu/segid/types"
)

// counterBucket is the bbolt bucket holding counter records keyed by code.
var counterBucket = []byte("counters")

// Bolt is a CounterStore backed by a bbolt database file.
//
// Every AcquireRange runs in its own write transaction. bbolt allows one writer
// at a time and holds an exclusive file lock, so acquisitions never conflict
// and the file can't be shared between processes. Use NATSKV for multi-host setups.
type Bolt struct {
	db     *bolt.DB
	logger types.Logger
}

var (
	_ types.CounterStore  = (*Bolt)(nil)
	_ types.CounterReader = (*Bolt)(nil)
)

// OpenBolt opens (or creates) the counter database at path.
//
// Parameters:
//   - path: Database file path
//   - opts: Optional configuration (logger)
//
// Returns:
//   - *Bolt: Counter store; call Close when done
//   - error: Open or bucket initialization failure
func OpenBolt(path string, opts ...Option) (*Bolt, error) {
	o := applyOptions(opts)

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", types.ErrStoreUnavailable, path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(counterBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create counter bucket: %w", err)
	}

	o.logger.Debug("bolt counter store opened", "path", path)

	return &Bolt{db: db, logger: o.logger}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// AcquireRange implements types.CounterStore.
func (b *Bolt) AcquireRange(ctx context.Context, code string, batchSize int64) (types.IDRange, error) {
	if err := ctx.Err(); err != nil {
		return types.IDRange{}, err
	}

	var r types.IDRange
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(counterBucket)

		var rec counterRecord
		if data := bucket.Get([]byte(code)); data != nil {
			var err error
			if rec, err = decodeRecord(data); err != nil {
				return fmt.Errorf("counter %s: %w", code, err)
			}
		}

		next, err := advance(rec.Value, batchSize)
		if err != nil {
			return err
		}

		data, err := encodeRecord(next.End, rec.Revision+1)
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte(code), data); err != nil {
			return err
		}
		r = next

		return nil
	})
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseNotOpen) {
			return types.IDRange{}, fmt.Errorf("%w: %w", types.ErrStoreUnavailable, err)
		}

		return types.IDRange{}, err
	}

	return r, nil
}

// Current implements types.CounterReader.
func (b *Bolt) Current(_ context.Context, code string) (types.CounterRecord, error) {
	var out types.CounterRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(counterBucket).Get([]byte(code))
		if data == nil {
			return fmt.Errorf("%w: %s", types.ErrCounterNotFound, code)
		}

		rec, err := decodeRecord(data)
		if err != nil {
			return fmt.Errorf("counter %s: %w", code, err)
		}
		out = types.CounterRecord{Key: code, Value: rec.Value, Revision: rec.Revision}

		return nil
	})

	return out, err
}
