package backend

import (
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"txkv/internal/common"
)

const boltBucket = "txkv"

// BoltBackend stores keys in a single bbolt bucket. Every call runs in its
// own bbolt transaction.
type BoltBackend struct {
	db     *bbolt.DB
	bucket []byte
}

func OpenBolt(path string) (*BoltBackend, error) {
	slog.Info("Opening bolt backend", "path", path)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	b := &BoltBackend{db: db, bucket: []byte(boltBucket)}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(b.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", boltBucket, err)
	}

	return b, nil
}

func (b *BoltBackend) Set(key, value string) common.Result {
	return Guard(func() error {
		return b.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket(b.bucket).Put([]byte(key), []byte(value))
		})
	})
}

func (b *BoltBackend) Get(key string) (string, bool, common.Result) {
	return GuardGet(func() (string, error) {
		var value string
		err := b.db.View(func(tx *bbolt.Tx) error {
			v := tx.Bucket(b.bucket).Get([]byte(key))
			if v == nil {
				return ErrNotFound
			}
			// v is only valid for the life of the transaction
			value = string(v)
			return nil
		})
		return value, err
	})
}

func (b *BoltBackend) Delete(key string) common.Result {
	return Guard(func() error {
		return b.db.Update(func(tx *bbolt.Tx) error {
			bucket := tx.Bucket(b.bucket)
			if bucket.Get([]byte(key)) == nil {
				return ErrNotFound
			}
			return bucket.Delete([]byte(key))
		})
	})
}

func (b *BoltBackend) Keys() ([]string, common.Result) {
	return GuardKeys(func() ([]string, error) {
		keys := make([]string, 0)
		err := b.db.View(func(tx *bbolt.Tx) error {
			return tx.Bucket(b.bucket).ForEach(func(k, _ []byte) error {
				keys = append(keys, string(k))
				return nil
			})
		})
		return keys, err
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
