// Package auth provides bearer token authentication and role-based
// authorization for services that delegate identity to a Keycloak
// authorization server.
//
// The public surface intentionally stays small: a Backend authenticates an
// incoming connection (HTTP request or long-lived stream such as a
// WebSocket), producing an Outcome that is either an authenticated
// Principal, an exemption, or a typed failure. Route handlers then enforce
// authorization with RequireRoles guards.
//
// # Authentication
//
// A Backend is constructed from a TokenValidator (typically
// keycloak.Manager) plus optional collaborators: a claims cache, a metrics
// recorder and an exclusion pattern for paths that skip authentication
// entirely.
//
//	settings, err := auth.LoadSettings()
//	if err != nil { log.Fatal(err) }
//	mgr, err := keycloak.NewManager(ctx, settings)
//	if err != nil { log.Fatal(err) }
//	backend := auth.NewBackend(mgr,
//	    auth.WithExcludedPaths(settings.ExcludedPathsPattern()),
//	)
//
//	// Later inside request handling (pseudocode):
//	outcome := backend.Authenticate(r.Context(), auth.NewConnection(r))
//	switch {
//	case outcome.IsAuthenticated():
//	    userID := outcome.Principal.ID
//	case outcome.IsExempt():
//	    // pass through unauthenticated
//	default:
//	    // map outcome.Kind to a 401 response
//	}
//
// For net/http servers, Middleware performs this mapping and stores the
// Principal on the request context; PrincipalFromContext retrieves it.
//
// # Authorization
//
// RequireRoles builds a reusable guard bound to a fixed role set. Guards can
// be applied as http middleware or checked directly against a Principal for
// stream handlers. A missing principal yields ErrUnauthenticated (401); a
// principal lacking roles yields a PermissionDeniedError (403) listing the
// missing roles in request order.
//
// # Errors
//
// Validation failures are classified into exactly three sentinel errors:
// ErrTokenExpired, ErrInvalidCredentials and ErrTokenDecode. All map to
// HTTP 401. Callers match with errors.Is; Outcome carries the
// pre-classified FailureKind so most callers never inspect the error chain.
package auth
