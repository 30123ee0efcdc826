package db

import (
	"fmt"
	"log/slog"

	"txkv/internal/backend"
	"txkv/internal/commands"
	"txkv/internal/config"
	"txkv/internal/datastore"
	"txkv/internal/metrics"
	"txkv/internal/parser"
)

// DB ties a parser to a datastore so raw request lines can be executed.
type DB struct {
	Parser    parser.Parser
	Datastore *datastore.Datastore
	Metrics   *metrics.Registry
}

// NewDB opens the configured backend and builds a datastore over it.
func NewDB(cfg *config.TxKVConfig, logger *slog.Logger) (*DB, error) {
	b, err := backend.Open(cfg.BackendOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}

	registry := metrics.NewRegistry()
	ds, err := datastore.New(
		datastore.WithBackend(b),
		datastore.WithLogger(logger),
		datastore.WithMetrics(registry),
	)
	if err != nil {
		_ = backend.Close(b)
		return nil, err
	}

	logger.Info("Datastore opened", "backend", cfg.Backend, "dataDir", cfg.DataDir)
	return &DB{
		Parser:    parser.NewStringParser(),
		Datastore: ds,
		Metrics:   registry,
	}, nil
}

// Execute parses one request line and runs it.
func (db *DB) Execute(line []byte) ([]byte, error) {
	cmd, err := db.Parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return commands.Execute(db.Datastore, cmd)
}

// Reset rolls back a transaction left open by a finished session.
func (db *DB) Reset() {
	if db.Datastore.InTransaction() {
		res := db.Datastore.Rollback()
		slog.Info("Rolled back abandoned transaction", "status", res.Status)
	}
}

func (db *DB) Close() error {
	return backend.Close(db.Datastore.Backend())
}
