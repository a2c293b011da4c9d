package auth

import (
	"encoding/json"
	"fmt"
	"time"
)

// Claims is the raw claim map returned by the identity provider. Values
// follow encoding/json conventions (numbers decode as float64) but claims
// constructed in-process may carry native Go types; accessors tolerate both.
type Claims map[string]any

func (c Claims) stringClaim(name string) (string, bool) {
	s, ok := c[name].(string)
	return s, ok
}

func (c Claims) numericClaim(name string) (int64, bool) {
	switch n := c[name].(type) {
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

// Principal is the authenticated identity derived from validated claims.
// It is constructed fresh on every authentication and never mutated after
// construction.
type Principal struct {
	// ID is the subject identifier (Keycloak user UUID).
	ID string
	// Username is the preferred_username claim.
	Username string
	// ExpiresAt is the token expiry as Unix seconds.
	ExpiresAt int64
	// Roles holds the client roles granted to the authorized party.
	// Always non-nil.
	Roles []string
}

// NewPrincipal builds a Principal from decoded claims. The sub, exp and
// preferred_username claims are required; role extraction never fails and
// defaults to an empty list when any link of the
// resource_access[azp].roles chain is missing or mis-shaped.
func NewPrincipal(claims Claims) (*Principal, error) {
	sub, ok := claims.stringClaim("sub")
	if !ok || sub == "" {
		return nil, fmt.Errorf("claims missing %q", "sub")
	}
	exp, ok := claims.numericClaim("exp")
	if !ok {
		return nil, fmt.Errorf("claims missing %q", "exp")
	}
	username, ok := claims.stringClaim("preferred_username")
	if !ok {
		return nil, fmt.Errorf("claims missing %q", "preferred_username")
	}
	return &Principal{
		ID:        sub,
		Username:  username,
		ExpiresAt: exp,
		Roles:     extractRoles(claims),
	}, nil
}

// extractRoles walks resource_access -> azp -> roles, defaulting at every
// step. azp absent is treated as the empty client id, which simply misses.
func extractRoles(claims Claims) []string {
	azp, _ := claims.stringClaim("azp")
	access, ok := claims["resource_access"].(map[string]any)
	if !ok {
		return []string{}
	}
	client, ok := access[azp].(map[string]any)
	if !ok {
		return []string{}
	}
	switch raw := client["roles"].(type) {
	case []string:
		return append([]string{}, raw...)
	case []any:
		roles := make([]string, 0, len(raw))
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	}
	return []string{}
}

// HasRole reports whether the principal holds the exact role name.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ExpiresIn returns the time remaining until token expiry relative to now.
// Negative when the token has already expired; no re-validation happens
// here.
func (p *Principal) ExpiresIn(now time.Time) time.Duration {
	return time.Duration(p.ExpiresAt-now.Unix()) * time.Second
}

// SameUser reports whether two principals denote the same user. Identity is
// defined solely by the subject id; role sets may differ across separate
// authentications of the same user.
func (p *Principal) SameUser(other *Principal) bool {
	return other != nil && p.ID == other.ID
}
