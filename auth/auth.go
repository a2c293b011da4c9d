package auth

import (
	"context"
	"errors"
)

// ErrTokenExpired indicates the token's validity window has elapsed per the
// authorization server's own checks.
var ErrTokenExpired = errors.New("token expired")

// ErrInvalidCredentials indicates the token was rejected: bad signature,
// issuer mismatch, or a provider-side refusal.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrTokenDecode indicates the token could not be parsed at all.
var ErrTokenDecode = errors.New("token decode error")

// ErrUnauthenticated indicates role enforcement ran without an authenticated
// principal on the request. Maps to HTTP 401.
var ErrUnauthenticated = errors.New("authentication required")

// FailureKind is the closed set of authentication failure classes. Every
// validation error maps to exactly one kind; callers switch on the kind
// rather than unwrapping error chains.
type FailureKind int

const (
	FailureExpired FailureKind = iota
	FailureInvalidCredentials
	FailureDecode
)

// String returns the wire prefix used in 401 response details.
func (k FailureKind) String() string {
	switch k {
	case FailureExpired:
		return "token_expired"
	case FailureInvalidCredentials:
		return "invalid_credentials"
	default:
		return "token_decode_error"
	}
}

// validationLabel is the metric label for token validation results.
func (k FailureKind) validationLabel() string {
	switch k {
	case FailureExpired:
		return "expired"
	case FailureInvalidCredentials:
		return "invalid"
	default:
		return "error"
	}
}

// attemptLabel is the metric label for authentication attempts. The label
// sets happen to coincide for failures.
func (k FailureKind) attemptLabel() string { return k.validationLabel() }

// ClassifyError maps a validator error onto a FailureKind. Unrecognized
// errors classify as FailureDecode, mirroring the catch-all decode error of
// the 401 taxonomy.
func ClassifyError(err error) FailureKind {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return FailureExpired
	case errors.Is(err, ErrInvalidCredentials):
		return FailureInvalidCredentials
	default:
		return FailureDecode
	}
}

// TokenValidator validates raw bearer tokens against the identity provider
// and returns the decoded claims. Implementations must classify failures by
// wrapping one of ErrTokenExpired, ErrInvalidCredentials or ErrTokenDecode,
// must not retry internally, and must be safe for concurrent use.
type TokenValidator interface {
	DecodeToken(ctx context.Context, token string) (Claims, error)
}

// ClaimsCache caches decoded claims between validations. Implementations
// are fail-open: Lookup reports a miss on any backend error, and Store /
// Invalidate swallow backend errors. The tokencache package provides the
// canonical implementation.
type ClaimsCache interface {
	Lookup(ctx context.Context, token string) (map[string]any, bool)
	Store(ctx context.Context, token string, claims map[string]any)
	Invalidate(ctx context.Context, token string)
}
