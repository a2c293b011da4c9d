// Package keycloak implements the identity-provider client: OpenID Connect
// token validation and user login against a Keycloak realm. Manager
// satisfies auth.TokenValidator and is the usual validator wired into an
// auth.Backend.
package keycloak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/acikabubo/keycloak-rbac-go/auth"
	"github.com/acikabubo/keycloak-rbac-go/internal/jwtauth"
	"github.com/acikabubo/keycloak-rbac-go/metrics"
)

// TokenSet is the token bundle returned by a successful login.
type TokenSet struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ExpiresIn        int64
	RefreshExpiresIn int64
}

// Manager validates access tokens and performs logins against one Keycloak
// realm. It holds no mutable state after construction and is safe for
// concurrent use; every call performs independent network I/O bounded by
// the caller's context.
type Manager struct {
	settings *auth.Settings
	verifier *jwtauth.Verifier
	oauth    *oauth2.Config
	recorder metrics.Recorder
	log      *slog.Logger
}

// ManagerOption configures optional collaborators on a Manager.
type ManagerOption func(*Manager)

// WithMetrics installs an observability recorder for login durations.
func WithMetrics(r metrics.Recorder) ManagerOption {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager performs OIDC discovery against the realm configured in
// settings and returns a ready Manager. Settings must have been validated.
func NewManager(ctx context.Context, settings *auth.Settings, opts ...ManagerOption) (*Manager, error) {
	cfg := jwtauth.DefaultConfig()
	cfg.Issuer = settings.Issuer()

	verifier, err := jwtauth.NewFromDiscovery(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("keycloak discovery for realm %q: %w", settings.Realm, err)
	}

	m := &Manager{
		settings: settings,
		verifier: verifier,
		oauth: &oauth2.Config{
			ClientID: settings.ClientID,
			Endpoint: oauth2.Endpoint{TokenURL: verifier.TokenEndpoint()},
		},
		recorder: metrics.Noop(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log.Info("keycloak manager initialized",
		slog.String("server_url", settings.ServerURL),
		slog.String("realm", settings.Realm),
	)
	return m, nil
}

// DecodeToken validates a raw access token and returns its claims. Errors
// wrap exactly one of auth.ErrTokenExpired, auth.ErrInvalidCredentials or
// auth.ErrTokenDecode. No retry is attempted; transient provider failures
// surface once as a classified error.
func (m *Manager) DecodeToken(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := m.verifier.Verify(ctx, token)
	if err != nil {
		// Map internal sentinel errors to the public taxonomy.
		switch {
		case errors.Is(err, jwtauth.ErrExpired):
			return nil, errors.Join(auth.ErrTokenExpired, err)
		case errors.Is(err, jwtauth.ErrMalformed):
			return nil, errors.Join(auth.ErrTokenDecode, err)
		default:
			return nil, errors.Join(auth.ErrInvalidCredentials, err)
		}
	}
	return auth.Claims(claims), nil
}

// Login authenticates a user with the resource owner password grant and
// returns the issued token set.
func (m *Manager) Login(ctx context.Context, username, password string) (*TokenSet, error) {
	start := time.Now()
	tok, err := m.oauth.PasswordCredentialsToken(ctx, username, password)
	m.recorder.OperationDuration("login", time.Since(start))
	if err != nil {
		return nil, errors.Join(auth.ErrInvalidCredentials, fmt.Errorf("login for %q: %w", username, err))
	}

	set := &TokenSet{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		set.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	if rt, ok := tok.Extra("refresh_token").(string); ok {
		set.RefreshToken = rt
	}
	if re, ok := tok.Extra("refresh_expires_in").(float64); ok {
		set.RefreshExpiresIn = int64(re)
	}
	return set, nil
}

// Compile-time interface check
var _ auth.TokenValidator = (*Manager)(nil)
