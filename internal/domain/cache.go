package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache defines the port for the shared key/value store (redis).
// The in-process TTL cache lives in internal/cache and does not implement it.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites an existing item. An expiration of 0 keeps the item indefinitely.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete does not fail when the key is absent.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error

	HGetAll(ctx context.Context, key string) (map[string]string, error)

	HSet(ctx context.Context, key string, field string, value string) error

	// HIncrBy adds incr to field of the hash at key and returns the new value.
	HIncrBy(ctx context.Context, key string, field string, incr int64) (int64, error)

	Expire(ctx context.Context, key string, expiration time.Duration) error
}
