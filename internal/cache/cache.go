// Package cache defines the key-value store contract backing the catalog
// search cache. Backends: in-process memory (default) and Redis via rueidis.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound signals a missing or expired cache entry.
var ErrKeyNotFound = errors.New("cache: key not found")

// Store is a TTL-aware key-value store.
type Store interface {
	// Get returns the value at key, or ErrKeyNotFound when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value at key with the given freshness window.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Ping checks backend availability.
	Ping(ctx context.Context) error
}
