// Package memory provides an in-memory implementation of the
// tokencache.Store interface using github.com/hashicorp/golang-lru/v2.
// Useful for single-process deployments and tests; entries are evicted by
// the LRU policy and reaped lazily on expiry.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/acikabubo/keycloak-rbac-go/tokencache"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

func (it *item) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// Store implements tokencache.Store in process memory.
type Store struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *item]
}

// New creates an in-memory store holding at most maxItems entries.
func New(maxItems int) (*Store, error) {
	cache, err := lru.New[string, *item](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

// Get retrieves the value for key. Missing and expired keys return
// (nil, nil); expired entries are removed on access.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.cache.Get(key)
	if !ok {
		return nil, nil
	}
	if it.expired(time.Now()) {
		s.cache.Remove(key)
		return nil, nil
	}
	return it.value, nil
}

// Set stores value under key with the given TTL. A non-positive TTL stores
// the entry without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	it := &item{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.cache.Add(key, it)
	s.mu.Unlock()
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.cache.Remove(key)
	s.mu.Unlock()
	return nil
}

// Close purges all entries.
func (s *Store) Close() error {
	s.mu.Lock()
	s.cache.Purge()
	s.mu.Unlock()
	return nil
}

// Compile-time interface check
var _ tokencache.Store = (*Store)(nil)
