package auth

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/acikabubo/keycloak-rbac-go/metrics"
)

// Backend is the per-connection authentication entry point. It holds no
// mutable state across calls; concurrent authentications proceed fully in
// parallel and share only the injected collaborators, each of which is safe
// for concurrent use.
type Backend struct {
	validator TokenValidator
	cache     ClaimsCache
	excluded  *regexp.Regexp
	recorder  metrics.Recorder
	log       *slog.Logger
}

// BackendOption configures optional collaborators on a Backend.
type BackendOption func(*Backend)

// WithCache enables claims caching. Without it the Backend behaves exactly
// as if every lookup missed and every store were discarded.
func WithCache(c ClaimsCache) BackendOption {
	return func(b *Backend) { b.cache = c }
}

// WithExcludedPaths exempts HTTP request paths matching the pattern from
// authentication. The pattern is matched anchored at the start of the path.
// Stream connections are never exempted.
func WithExcludedPaths(re *regexp.Regexp) BackendOption {
	return func(b *Backend) { b.excluded = re }
}

// WithMetrics installs an observability recorder. Recording is
// fire-and-forget and never influences the authentication outcome.
func WithMetrics(r metrics.Recorder) BackendOption {
	return func(b *Backend) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) BackendOption {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBackend builds a Backend around the given validator.
func NewBackend(validator TokenValidator, opts ...BackendOption) *Backend {
	b := &Backend{
		validator: validator,
		recorder:  metrics.Noop(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Authenticate runs the authentication state machine for one connection:
// exemption check, token extraction, cache lookup, provider validation,
// cache population, principal construction. All failure kinds are terminal
// for the attempt.
func (b *Backend) Authenticate(ctx context.Context, conn Connection) Outcome {
	b.log.DebugContext(ctx, "authenticating connection", slog.String("kind", conn.Kind().String()))

	if conn.Kind() != KindStream && pathExcluded(b.excluded, conn.Path()) {
		b.log.DebugContext(ctx, "path excluded from authentication", slog.String("path", conn.Path()))
		return NewExempt()
	}

	token := credentialFrom(conn)

	if b.cache != nil {
		if cached, ok := b.cache.Lookup(ctx, token); ok {
			b.recorder.CacheHit()
			if p, err := NewPrincipal(Claims(cached)); err == nil {
				b.recorder.AuthAttempt("success")
				return NewAuthenticated(p)
			} else {
				// A cached entry that cannot yield a principal is
				// treated as a miss; the validator remains the source
				// of truth.
				b.log.WarnContext(ctx, "discarding unusable cached claims", slog.String("err", err.Error()))
				b.cache.Invalidate(ctx, token)
			}
		} else {
			b.recorder.CacheMiss()
		}
	}

	start := time.Now()
	claims, err := b.validator.DecodeToken(ctx, token)
	b.recorder.OperationDuration("validate_token", time.Since(start))
	if err != nil {
		kind := ClassifyError(err)
		b.recorder.TokenValidation(kind.validationLabel())
		b.recorder.AuthAttempt(kind.attemptLabel())
		b.log.ErrorContext(ctx, "token validation failed",
			slog.String("kind", kind.String()),
			slog.String("err", err.Error()),
		)
		return NewFailure(kind, err)
	}
	b.recorder.TokenValidation("valid")

	if b.cache != nil {
		b.cache.Store(ctx, token, claims)
	}

	p, err := NewPrincipal(claims)
	if err != nil {
		b.recorder.AuthAttempt("error")
		b.log.ErrorContext(ctx, "validated claims missing required fields", slog.String("err", err.Error()))
		return NewFailure(FailureDecode, err)
	}
	b.recorder.AuthAttempt("success")
	return NewAuthenticated(p)
}

// pathExcluded reports whether the exclusion pattern matches at the start of
// the path. Anchoring keeps an unanchored pattern like "/health" from
// exempting nested paths such as "/api/health".
func pathExcluded(re *regexp.Regexp, path string) bool {
	if re == nil {
		return false
	}
	loc := re.FindStringIndex(path)
	return loc != nil && loc[0] == 0
}
