package auth

import "strings"

// HasRoles checks whether the principal holds every required role. The
// second return value lists the required roles the principal lacks, in the
// order they were requested. An empty requirement always grants; a nil
// principal lacks every role. Matching is exact string-set membership: no
// hierarchy, no wildcards, no case folding.
func HasRoles(p *Principal, required []string) (bool, []string) {
	if len(required) == 0 {
		return true, nil
	}
	if p == nil {
		return false, append([]string(nil), required...)
	}
	have := make(map[string]struct{}, len(p.Roles))
	for _, r := range p.Roles {
		have[r] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	return len(missing) == 0, missing
}

// PermissionDeniedError reports which required roles the principal lacked.
// Maps to HTTP 403.
type PermissionDeniedError struct {
	Missing []string
}

func (e *PermissionDeniedError) Error() string {
	return "Missing required roles: " + strings.Join(e.Missing, ", ")
}

// Guard is a reusable authorization check bound to a fixed role set. Build
// one with RequireRoles and apply it per request, either directly via Check
// or as http middleware via Handler.
type Guard struct {
	roles []string
}

// RequireRoles builds a guard requiring ALL of the given roles.
func RequireRoles(roles ...string) Guard {
	return Guard{roles: append([]string(nil), roles...)}
}

// Check enforces the guard against an authentication state. A nil principal
// (unauthenticated or exempt connection) yields ErrUnauthenticated; missing
// roles yield a *PermissionDeniedError; success returns nil with no other
// effect.
func (g Guard) Check(p *Principal) error {
	if p == nil {
		return ErrUnauthenticated
	}
	ok, missing := HasRoles(p, g.roles)
	if !ok {
		return &PermissionDeniedError{Missing: missing}
	}
	return nil
}
