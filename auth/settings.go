package auth

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Settings carries the configuration consumed by this module. Values are
// loaded from KEYCLOAK_AUTH_* environment variables via LoadSettings, or
// populated explicitly followed by a Validate call.
type Settings struct {
	// ServerURL is the Keycloak base URL. ENV: KEYCLOAK_AUTH_SERVER_URL
	ServerURL string `env:"KEYCLOAK_AUTH_SERVER_URL,default=http://localhost:8080/"`
	// Realm is the Keycloak realm name. ENV: KEYCLOAK_AUTH_REALM
	Realm string `env:"KEYCLOAK_AUTH_REALM,default=master"`
	// ClientID is the client used for token validation. ENV: KEYCLOAK_AUTH_CLIENT_ID
	ClientID string `env:"KEYCLOAK_AUTH_CLIENT_ID"`
	// AdminUsername and AdminPassword are carried read-only for callers
	// driving the Keycloak admin API; nothing in the request path uses
	// them. ENV: KEYCLOAK_AUTH_ADMIN_USERNAME / KEYCLOAK_AUTH_ADMIN_PASSWORD
	AdminUsername string `env:"KEYCLOAK_AUTH_ADMIN_USERNAME"`
	AdminPassword string `env:"KEYCLOAK_AUTH_ADMIN_PASSWORD"`
	// ExcludedPaths is a regex matched from the start of HTTP request
	// paths; matching paths skip authentication. ENV: KEYCLOAK_AUTH_EXCLUDED_PATHS
	ExcludedPaths string `env:"KEYCLOAK_AUTH_EXCLUDED_PATHS,default=^(/docs|/openapi.json|/health|/metrics)$"`
	// RedisURL enables the claims cache when non-empty. ENV: KEYCLOAK_AUTH_REDIS_URL
	RedisURL string `env:"KEYCLOAK_AUTH_REDIS_URL"`
	// CacheTTLBuffer is subtracted from token expiry when computing cache
	// TTLs. ENV: KEYCLOAK_AUTH_CACHE_TTL_BUFFER
	CacheTTLBuffer time.Duration `env:"KEYCLOAK_AUTH_CACHE_TTL_BUFFER,default=30s"`
	// MetricsEnabled switches the Prometheus recorder on. ENV: KEYCLOAK_AUTH_METRICS_ENABLED
	MetricsEnabled bool `env:"KEYCLOAK_AUTH_METRICS_ENABLED,default=false"`
	// Debug enables debug-level logging. ENV: KEYCLOAK_AUTH_DEBUG
	Debug bool `env:"KEYCLOAK_AUTH_DEBUG,default=false"`

	excluded *regexp.Regexp
}

// LoadSettings reads Settings from the environment and validates them.
// An invalid exclusion pattern fails here, at load time, rather than on the
// first request.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envdecode.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode settings from env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks invariants and compiles the exclusion pattern. Explicitly
// constructed Settings must be validated before use.
func (s *Settings) Validate() error {
	if s.ServerURL == "" {
		return fmt.Errorf("settings: server URL is required")
	}
	if s.Realm == "" {
		return fmt.Errorf("settings: realm is required")
	}
	if s.ExcludedPaths != "" {
		re, err := regexp.Compile(s.ExcludedPaths)
		if err != nil {
			return fmt.Errorf("settings: invalid excluded paths pattern: %w", err)
		}
		s.excluded = re
	}
	return nil
}

// ExcludedPathsPattern returns the compiled exclusion pattern, or nil when
// no pattern is configured or Validate has not run.
func (s *Settings) ExcludedPathsPattern() *regexp.Regexp {
	return s.excluded
}

// Issuer returns the OIDC issuer URL for the configured realm.
func (s *Settings) Issuer() string {
	return strings.TrimSuffix(s.ServerURL, "/") + "/realms/" + s.Realm
}
