package backend

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"txkv/internal/common"
)

// BadgerBackend is a backend on top of badger. An empty path runs badger
// fully in memory.
type BadgerBackend struct {
	db *badger.DB
}

func OpenBadger(path string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	slog.Info("Opening badger backend", "path", path, "inMemory", opts.InMemory)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Set(key, value string) common.Result {
	return Guard(func() error {
		return b.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(key), []byte(value))
		})
	})
}

func (b *BadgerBackend) Get(key string) (string, bool, common.Result) {
	return GuardGet(func() (string, error) {
		var value []byte
		err := b.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			value, err = item.ValueCopy(nil)
			return err
		})
		return string(value), err
	})
}

func (b *BadgerBackend) Delete(key string) common.Result {
	return Guard(func() error {
		return b.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			return txn.Delete([]byte(key))
		})
	})
}

func (b *BadgerBackend) Keys() ([]string, common.Result) {
	return GuardKeys(func() ([]string, error) {
		keys := make([]string, 0)
		err := b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				keys = append(keys, string(it.Item().KeyCopy(nil)))
			}
			return nil
		})
		return keys, err
	})
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
