// Package jwtauth verifies Keycloak-issued JWT access tokens against the
// realm's JWKS, discovered via OpenID Connect discovery. It is the
// engine behind the public keycloak package and classifies every failure
// into one of three sentinel errors.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// ErrExpired indicates the token's validity window has elapsed.
var ErrExpired = errors.New("jwtauth: token expired")

// ErrInvalid indicates the token was rejected: bad signature, issuer
// mismatch, disallowed algorithm, or failed claim validation other than
// expiry.
var ErrInvalid = errors.New("jwtauth: token invalid")

// ErrMalformed indicates the token could not be parsed at all.
var ErrMalformed = errors.New("jwtauth: token malformed")

// Config controls validation behavior for realm access tokens.
type Config struct {
	// Issuer is the realm issuer URL, e.g.
	// https://keycloak.example/realms/myrealm.
	Issuer string
	// AllowedAlgs restricts accepted JWS algorithms. "none" is never
	// allowed. Defaults to ["RS256"].
	AllowedAlgs []string
	// Leeway is the clock skew tolerance for time-based claims.
	Leeway time.Duration
}

// DefaultConfig returns a Config with the default algorithm policy.
func DefaultConfig() *Config {
	return &Config{
		AllowedAlgs: []string{"RS256"},
	}
}

// Verifier validates realm access tokens. It performs signature, issuer and
// expiry validation; JWKS keys auto-refresh in the background. Safe for
// concurrent use; a Verify call holds no shared mutable state.
type Verifier struct {
	cfg           *Config
	keyfunc       jwt.Keyfunc
	tokenEndpoint string
}

// NewFromDiscovery performs OIDC discovery against cfg.Issuer to obtain the
// realm's jwks_uri and token_endpoint, and constructs a Verifier.
func NewFromDiscovery(ctx context.Context, cfg *Config) (*Verifier, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if len(cfg.AllowedAlgs) == 0 {
		cfg.AllowedAlgs = []string{"RS256"}
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed: %w", err)
	}
	var meta struct {
		JwksURI string `json:"jwks_uri"`
		Token   string `json:"token_endpoint"`
	}
	if err := provider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("invalid discovery metadata: %w", err)
	}
	if meta.JwksURI == "" {
		return nil, errors.New("discovery incomplete: missing jwks_uri")
	}

	// Auto-refreshing JWKS
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{meta.JwksURI})
	if err != nil {
		return nil, fmt.Errorf("jwks init failed: %w", err)
	}

	return &Verifier{
		cfg: cfg,
		keyfunc: func(t *jwt.Token) (any, error) {
			alg := t.Method.Alg()
			allowed := false
			for _, a := range cfg.AllowedAlgs {
				if alg == a {
					allowed = true
					break
				}
			}
			if !allowed {
				return nil, fmt.Errorf("disallowed alg: %s", alg)
			}
			return kf.Keyfunc(t)
		},
		tokenEndpoint: meta.Token,
	}, nil
}

// TokenEndpoint returns the realm token endpoint learned via discovery.
// Empty if the realm metadata did not advertise one.
func (v *Verifier) TokenEndpoint() string { return v.tokenEndpoint }

// Verify validates the token and returns its claims. Failures wrap exactly
// one of ErrExpired, ErrInvalid or ErrMalformed.
func (v *Verifier) Verify(ctx context.Context, tok string) (map[string]any, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(v.cfg.AllowedAlgs),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithLeeway(v.cfg.Leeway),
	)

	parsed, err := parser.Parse(tok, v.keyfunc)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims type", ErrInvalid)
	}
	return claims, nil
}

// classify maps golang-jwt parse errors onto the package sentinels.
// Malformed input that never reached signature verification classifies as
// ErrMalformed; an elapsed validity window as ErrExpired; everything else
// (signature, issuer, not-yet-valid, key resolution) as ErrInvalid.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
}
