// Package authtest provides test doubles for the auth package: canned
// validators and failing cache stores used across the module's tests and
// useful to consumers testing their own wiring.
package authtest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/acikabubo/keycloak-rbac-go/auth"
	"github.com/acikabubo/keycloak-rbac-go/tokencache"
)

// ValidatorFunc adapts a function to auth.TokenValidator.
type ValidatorFunc func(ctx context.Context, token string) (auth.Claims, error)

func (f ValidatorFunc) DecodeToken(ctx context.Context, token string) (auth.Claims, error) {
	return f(ctx, token)
}

// StaticValidator returns fixed claims (or a fixed error) for every token
// and counts invocations.
type StaticValidator struct {
	ClaimsValue auth.Claims
	Err         error

	calls atomic.Int64
}

// NewStaticValidator builds a validator that succeeds with the given claims.
func NewStaticValidator(claims auth.Claims) *StaticValidator {
	return &StaticValidator{ClaimsValue: claims}
}

// NewFailingValidator builds a validator that fails every call with err.
func NewFailingValidator(err error) *StaticValidator {
	return &StaticValidator{Err: err}
}

func (v *StaticValidator) DecodeToken(ctx context.Context, token string) (auth.Claims, error) {
	v.calls.Add(1)
	if v.Err != nil {
		return nil, v.Err
	}
	return v.ClaimsValue, nil
}

// Calls reports how many times DecodeToken ran.
func (v *StaticValidator) Calls() int { return int(v.calls.Load()) }

// FailingStore is a tokencache.Store whose every operation fails with Err,
// for exercising the cache's fail-open behavior.
type FailingStore struct {
	Err error
}

func (s *FailingStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, s.Err }
func (s *FailingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.Err
}
func (s *FailingStore) Delete(ctx context.Context, key string) error { return s.Err }
func (s *FailingStore) Close() error                                 { return s.Err }

// Compile-time interface check
var _ tokencache.Store = (*FailingStore)(nil)
