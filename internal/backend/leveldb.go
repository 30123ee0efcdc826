package backend

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/syndtr/goleveldb/leveldb"

	"txkv/internal/common"
)

// LevelDBBackend is a backend on top of goleveldb.
type LevelDBBackend struct {
	db *leveldb.DB
}

func OpenLevelDB(path string) (*LevelDBBackend, error) {
	slog.Info("Opening leveldb backend", "path", path)
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb: %w", err)
	}
	return NewLevelDBBackend(db), nil
}

// NewLevelDBBackend wraps an already opened database.
func NewLevelDBBackend(db *leveldb.DB) *LevelDBBackend {
	return &LevelDBBackend{db: db}
}

func (l *LevelDBBackend) Set(key, value string) common.Result {
	return Guard(func() error {
		return l.db.Put([]byte(key), []byte(value), nil)
	})
}

func (l *LevelDBBackend) Get(key string) (string, bool, common.Result) {
	return GuardGet(func() (string, error) {
		v, err := l.db.Get([]byte(key), nil)
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", err
		}
		return string(v), nil
	})
}

func (l *LevelDBBackend) Delete(key string) common.Result {
	return Guard(func() error {
		// leveldb deletes of missing keys succeed silently
		ok, err := l.db.Has([]byte(key), nil)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return l.db.Delete([]byte(key), nil)
	})
}

func (l *LevelDBBackend) Keys() ([]string, common.Result) {
	return GuardKeys(func() ([]string, error) {
		iter := l.db.NewIterator(nil, nil)
		defer iter.Release()

		keys := make([]string, 0)
		for iter.Next() {
			keys = append(keys, string(iter.Key()))
		}
		return keys, iter.Error()
	})
}

func (l *LevelDBBackend) Close() error {
	return l.db.Close()
}
