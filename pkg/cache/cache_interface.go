package cache

import (
	"context"
	"time"
)

// Cache is the contract for the shared cache layer. Keeping it behind an
// interface lets services and tests swap the Redis implementation for an
// in-memory one.
type Cache interface {
	// Get reads a key and unmarshals it into dest. The bool reports a hit;
	// on a miss dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// Increment atomically increments a counter key, creating it at 1.
	Increment(ctx context.Context, key string) (int64, error)

	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)

	Ping(ctx context.Context) error
}
