package cache

import (
	"context"
	"time"
)

// NullCache discards every write and misses every read, so each pipeline
// stage recomputes from scratch. It backs --no-cache and the "none" cache
// backend, and stands in for a real cache in tests.
type NullCache struct{}

// NewNullCache creates a disabled cache.
func NewNullCache() Cache {
	return NullCache{}
}

// Get always misses.
func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = NullCache{}
