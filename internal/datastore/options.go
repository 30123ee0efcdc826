package datastore

import (
	"log/slog"

	"txkv/internal/backend"
	"txkv/internal/matcher"
	"txkv/internal/metrics"
)

type Option func(*options)

type options struct {
	backend  backend.Backend
	inMemory bool
	logger   *slog.Logger
	metrics  *metrics.Registry
	matcher  matcher.Matcher
}

// WithBackend injects the storage engine.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithInMemoryBackend uses a fresh in-memory engine. It takes precedence over
// WithBackend.
func WithInMemoryBackend() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(registry *metrics.Registry) Option {
	return func(o *options) {
		o.metrics = registry
	}
}

// WithMatcher replaces the pattern language used by Keys.
func WithMatcher(m matcher.Matcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}
