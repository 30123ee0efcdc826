package backend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Kind string

const (
	KindMemory  Kind = "memory"
	KindBolt    Kind = "bolt"
	KindLevelDB Kind = "leveldb"
	KindBadger  Kind = "badger"
	KindRedis   Kind = "redis"
)

var ErrUnknownKind = errors.New("unknown backend kind")

type Options struct {
	Kind Kind
	// DataDir holds the files of the disk engines.
	DataDir string
	Redis   RedisOptions
}

// Open builds the backend named by opts.Kind.
func Open(opts Options) (Backend, error) {
	switch opts.Kind {
	case KindMemory, "":
		return NewMemoryBackend(), nil
	case KindBolt:
		if err := ensureDir(opts.DataDir); err != nil {
			return nil, err
		}
		return OpenBolt(filepath.Join(opts.DataDir, "txkv.bolt"))
	case KindLevelDB:
		if err := ensureDir(opts.DataDir); err != nil {
			return nil, err
		}
		return OpenLevelDB(filepath.Join(opts.DataDir, "leveldb"))
	case KindBadger:
		if opts.DataDir == "" {
			return OpenBadger("")
		}
		if err := ensureDir(opts.DataDir); err != nil {
			return nil, err
		}
		return OpenBadger(filepath.Join(opts.DataDir, "badger"))
	case KindRedis:
		return OpenRedis(opts.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}

// Close releases the backend if it holds resources.
func Close(b Backend) error {
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func ensureDir(dir string) error {
	if dir == "" {
		return errors.New("data directory is required for disk backends")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}
