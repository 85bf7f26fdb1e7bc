package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spetersoncode/countdown/internal/db"
	bolt "go.etcd.io/bbolt"
)

// DefaultBoltPath is the default location of the bbolt store.
const DefaultBoltPath = "~/.countdown/countdown.bolt"

const bucketCountdown = "countdown"

// BoltKV stores values in a single bbolt bucket.
type BoltKV struct {
	db *bolt.DB
}

// OpenBolt opens or creates a bbolt store at path. An empty path uses
// DefaultBoltPath. Opening fails after one second if another process holds
// the file lock.
func OpenBolt(path string) (*BoltKV, error) {
	if path == "" {
		path = DefaultBoltPath
	}
	path = db.ExpandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	bdb, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}

	err = bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCountdown))
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("failed to initialize bolt bucket: %w", err)
	}

	return &BoltKV{db: bdb}, nil
}

// Path returns the store file path.
func (b *BoltKV) Path() string { return b.db.Path() }

// Get implements KV.
func (b *BoltKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketCountdown)).Get([]byte(key)); v != nil {
			// v is only valid for the life of the transaction.
			value = append([]byte{}, v...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, found, nil
}

// Set implements KV.
func (b *BoltKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCountdown)).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Close implements KV.
func (b *BoltKV) Close() error { return b.db.Close() }
