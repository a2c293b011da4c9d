// Package redis provides a Redis-backed implementation of the
// tokencache.Store interface with per-key TTL-on-write semantics.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acikabubo/keycloak-rbac-go/tokencache"
)

// Config contains configuration options for the Redis store.
type Config struct {
	// Client is the Redis client instance. It is shared process-wide and
	// safe for concurrent use; the store issues independent operations
	// per call.
	Client *redis.Client
}

// Store implements tokencache.Store using Redis.
type Store struct {
	client *redis.Client
}

// New creates a Redis-backed store around an existing client.
func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Store{client: cfg.Client}, nil
}

// NewFromURL dials Redis from a connection URL such as
// redis://localhost:6379/1 and verifies connectivity with a ping.
func NewFromURL(ctx context.Context, url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: client}, nil
}

// Get retrieves the value for key. A missing key returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key with the given TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Compile-time interface check
var _ tokencache.Store = (*Store)(nil)
