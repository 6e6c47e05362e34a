package redisession

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of go-redis. Connection pooling and
// timeouts are delegated to the underlying client.
type RedisStore struct {
	db redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client. The caller stays responsible
// for the client's lifecycle unless Close is used.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{db: client}
}

// Connect establishes a connection to the Redis server described by cfg,
// authenticating and selecting the configured logical database. It attempts
// to connect up to cfg.RetryAttempts times with cfg.RetryInterval between
// attempts, bounded overall by cfg.ConnectTimeout.
//
// Returns ErrStoreNotReady if all attempts fail.
func Connect(ctx context.Context, cfg Config) (*RedisStore, error) {
	cfg = cfg.applyDefaults()

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt := &redis.Options{
		Addr:     net.JoinHostPort(cfg.Addr, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	for i := 0; i < cfg.RetryAttempts; i++ {
		client := redis.NewClient(opt)

		if err := client.Ping(ctx).Err(); err == nil {
			return NewRedisStore(client), nil
		}

		// Close the failed client before the next attempt.
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrStoreNotReady, ctx.Err())
		default:
			time.Sleep(cfg.RetryInterval)
		}
	}

	return nil, ErrStoreNotReady
}

// Get returns the value for key; a missing key comes back as found=false.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key without an expiration; SET also drops any TTL
// the key carried before, so callers stamp the TTL with Expire afterwards.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.db.Set(ctx, key, value, 0).Err()
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.db.Del(ctx, key).Err()
}

// Expire sets the remaining lifetime of key. Redis rounds to whole seconds.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.db.Expire(ctx, key, ttl).Err()
}

// Ping reports whether the server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx).Err()
}

// Close terminates the Redis connection.
func (s *RedisStore) Close() error {
	return s.db.Close()
}

// Conn returns the underlying Redis client for advanced operations.
func (s *RedisStore) Conn() redis.UniversalClient {
	return s.db
}

// Healthcheck returns a probe function suitable for liveness and readiness
// checks. It returns an error wrapping ErrHealthcheckFailed when the store
// is not reachable.
func Healthcheck(store Store) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
