// Package memory provides the in-process cache backend.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/giftwise/giftwise/internal/cache"
)

// Compile-time check: Store implements cache.Store.
var _ cache.Store = (*Store)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a mutex-guarded map with per-entry TTL. Size is unbounded, which
// is acceptable for a single session's keyword space.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewStore creates a memory store using wall-clock time.
func NewStore() *Store {
	return &Store{entries: map[string]entry{}, now: time.Now}
}

// NewStoreWithClock creates a memory store with an injectable clock for tests.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{entries: map[string]entry{}, now: now}
}

// Get returns the value at key. Expired entries are treated as absent and
// removed lazily.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	if !s.now().After(e.expiresAt) {
		return e.value, nil
	}

	// Re-check under the write lock: a Set may have refreshed the entry
	// between the read above and the delete below.
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok = s.entries[key]
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, cache.ErrKeyNotFound
	}
	return e.value, nil
}

// Set stores value at key for ttl.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-process store.
func (s *Store) Ping(context.Context) error { return nil }
