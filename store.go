package redisession

import (
	"context"
	"time"
)

// Store is the key-value capability the session handler runs on. Any
// TTL-capable store can satisfy it; RedisStore is the production
// implementation and MemoryStore serves tests and local development.
//
// Set and Expire are deliberately separate commands: the write path must
// attempt both, and the read path refreshes a key's TTL without rewriting
// its value.
type Store interface {
	// Get returns the value stored under key. A missing key is not an error;
	// it is reported through the found flag.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key, overwriting any previous value and
	// clearing any previous expiration. Empty values are legal.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Expire sets the remaining lifetime of key. Expiring a missing key is
	// not an error.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
