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

// Cache is the port for caching operations; the Redis adapter implements it.
type Cache interface {
	// Get retrieves an item, returning ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores an item with the given expiration; 0 means no expiry.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete removes an item. Absent keys are not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks the health of the cache service.
	Ping(ctx context.Context) error
}
