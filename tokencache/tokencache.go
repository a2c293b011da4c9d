// Package tokencache caches decoded token claims between validations so
// repeated requests with the same bearer token skip the identity-provider
// round-trip. Entries are keyed by a SHA-256 fingerprint of the raw token
// (raw tokens are never stored) with a TTL derived from the token's exp
// claim. Every backend error is absorbed: lookups degrade to misses and
// writes become no-ops, so the cache can never fail an authentication.
package tokencache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"
)

const keyPrefix = "token:claims:"

// minTTL floors derived TTLs so entries near (or past) expiry still get a
// valid positive expiration on write.
const minTTL = time.Second

// fingerprint returns the SHA-256 hex digest of the raw token.
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func cacheKey(token string) string {
	return keyPrefix + fingerprint(token)
}

// Store is the key-value backend contract. Get returns (nil, nil) for a
// missing or expired key and reserves errors for genuine backend failures.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Cache wraps a Store with fingerprinting, TTL derivation and fail-open
// error absorption. The only state is the backend handle and configuration;
// concurrent calls issue independent backend operations.
type Cache struct {
	store     Store
	ttlBuffer time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTLBuffer sets the safety margin subtracted from token expiry when
// computing entry TTLs, so entries vanish before the token itself expires.
// Default 30s.
func WithTTLBuffer(d time.Duration) Option {
	return func(c *Cache) { c.ttlBuffer = d }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a Cache over the given backend.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:     store,
		ttlBuffer: 30 * time.Second,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup retrieves cached claims for the token. The second return value is
// false on a miss and on any backend or decode error; errors are logged,
// never propagated.
func (c *Cache) Lookup(ctx context.Context, token string) (map[string]any, bool) {
	raw, err := c.store.Get(ctx, cacheKey(token))
	if err != nil {
		c.log.WarnContext(ctx, "token cache get failed (fail-open)", slog.String("err", err.Error()))
		return nil, false
	}
	if raw == nil {
		c.log.DebugContext(ctx, "token cache miss")
		return nil, false
	}
	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		c.log.WarnContext(ctx, "token cache entry undecodable (fail-open)", slog.String("err", err.Error()))
		return nil, false
	}
	c.log.DebugContext(ctx, "token cache hit")
	return claims, true
}

// Store writes the claims keyed by the token's fingerprint. The TTL is
// exp - now - ttlBuffer floored at one second; claims without a usable exp
// are never written. Backend errors are logged and swallowed.
func (c *Cache) Store(ctx context.Context, token string, claims map[string]any) {
	exp, ok := expiryClaim(claims)
	if !ok {
		c.log.DebugContext(ctx, "claims have no exp, skipping cache")
		return
	}
	ttl := time.Unix(exp, 0).Sub(c.now()) - c.ttlBuffer
	if ttl < minTTL {
		ttl = minTTL
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		c.log.WarnContext(ctx, "token claims unencodable, skipping cache", slog.String("err", err.Error()))
		return
	}
	if err := c.store.Set(ctx, cacheKey(token), raw, ttl); err != nil {
		c.log.WarnContext(ctx, "token cache set failed (fail-open)", slog.String("err", err.Error()))
		return
	}
	c.log.DebugContext(ctx, "token claims cached", slog.Duration("ttl", ttl))
}

// Invalidate removes the entry for the token. Idempotent; backend errors
// are logged and swallowed.
func (c *Cache) Invalidate(ctx context.Context, token string) {
	if err := c.store.Delete(ctx, cacheKey(token)); err != nil {
		c.log.WarnContext(ctx, "token cache delete failed (fail-open)", slog.String("err", err.Error()))
		return
	}
	c.log.DebugContext(ctx, "token cache entry invalidated")
}

// Close releases the backend connection.
func (c *Cache) Close() error {
	return c.store.Close()
}

// expiryClaim reads exp tolerating both JSON-decoded and in-process claim
// values.
func expiryClaim(claims map[string]any) (int64, bool) {
	switch n := claims["exp"].(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
