package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"txkv/internal/common"
)

const (
	defaultRedisPrefix    = "txkv:"
	defaultRedisTimeout   = 2 * time.Second
	redisScanBatch        = 256
	redisConnectAttempts  = 5
	redisConnectBaseDelay = 100 * time.Millisecond
)

// RedisOptions holds configuration for connecting to a Redis server.
type RedisOptions struct {
	// Address is the host:port of the Redis server.
	Address  string
	Password string
	DB       int
	// Prefix namespaces every key this backend touches.
	Prefix string
	// OpTimeout bounds each Redis round trip.
	OpTimeout time.Duration
}

func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Address:   "localhost:6379",
		Prefix:    defaultRedisPrefix,
		OpTimeout: defaultRedisTimeout,
	}
}

// redisClient is the part of *redis.Client the backend uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisBackend stores keys as plain Redis strings under a prefix.
type RedisBackend struct {
	client  redisClient
	prefix  string
	timeout time.Duration
}

// OpenRedis connects and pings the server, backing off between attempts.
func OpenRedis(options RedisOptions) (*RedisBackend, error) {
	slog.Info("Opening Redis connection", "address", options.Address, "db", options.DB)
	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	r := newRedisBackend(client, options)

	b := retry.WithMaxRetries(redisConnectAttempts, retry.NewFibonacci(redisConnectBaseDelay))
	err := retry.Do(context.Background(), b, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("Redis ping failed", "address", options.Address, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", options.Address, err)
	}

	return r, nil
}

func newRedisBackend(client redisClient, options RedisOptions) *RedisBackend {
	timeout := options.OpTimeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return &RedisBackend{
		client:  client,
		prefix:  options.Prefix,
		timeout: timeout,
	}
}

func (r *RedisBackend) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *RedisBackend) Set(key, value string) common.Result {
	return Guard(func() error {
		ctx, cancel := r.opContext()
		defer cancel()
		return r.client.Set(ctx, r.prefix+key, value, 0).Err()
	})
}

func (r *RedisBackend) Get(key string) (string, bool, common.Result) {
	return GuardGet(func() (string, error) {
		ctx, cancel := r.opContext()
		defer cancel()
		value, err := r.client.Get(ctx, r.prefix+key).Result()
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return value, err
	})
}

func (r *RedisBackend) Delete(key string) common.Result {
	return Guard(func() error {
		ctx, cancel := r.opContext()
		defer cancel()
		n, err := r.client.Del(ctx, r.prefix+key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *RedisBackend) Keys() ([]string, common.Result) {
	return GuardKeys(func() ([]string, error) {
		ctx, cancel := r.opContext()
		defer cancel()

		// SCAN may return a key more than once across pages.
		seen := make(map[string]struct{})
		keys := make([]string, 0)
		match := escapeGlob(r.prefix) + "*"
		var cursor uint64
		for {
			batch, next, err := r.client.Scan(ctx, cursor, match, redisScanBatch).Result()
			if err != nil {
				return nil, err
			}
			for _, k := range batch {
				if !strings.HasPrefix(k, r.prefix) {
					continue
				}
				k = strings.TrimPrefix(k, r.prefix)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
			if next == 0 {
				return keys, nil
			}
			cursor = next
		}
	})
}

// escapeGlob quotes the characters SCAN MATCH treats as wildcards.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
