package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/acikabubo/keycloak-rbac-go/internal/logctx"
)

type principalKey struct{}

// PrincipalFromContext returns the authenticated principal stored by
// Middleware, or false for unauthenticated and exempt requests.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// ContextWithPrincipal attaches a principal to the context. Host frameworks
// that do not use Middleware can call this from their own integration layer
// so RequireRoles guards keep working.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// Middleware authenticates every request through the backend and maps the
// outcome onto the wire: failures become 401 responses carrying the
// classified detail, exempt requests pass through without a principal, and
// authenticated requests continue with the principal on the context.
func Middleware(b *Backend) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn := NewConnection(r)
			ad := &logctx.AuthData{
				RequestID: uuid.NewString(),
				Path:      r.URL.Path,
				ConnKind:  conn.Kind().String(),
			}
			ctx := logctx.WithAuthData(r.Context(), ad)

			outcome := b.Authenticate(ctx, conn)
			switch outcome.Status {
			case StatusExempt:
				next.ServeHTTP(w, r.WithContext(ctx))
			case StatusAuthenticated:
				ad.UserID = outcome.Principal.ID
				ctx = ContextWithPrincipal(ctx, outcome.Principal)
				next.ServeHTTP(w, r.WithContext(ctx))
			default:
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeDetail(w, http.StatusUnauthorized, outcome.Detail())
			}
		})
	}
}

// Handler wraps next with the guard, responding 401 when no principal is
// present and 403 with the missing role list when authorization fails.
func (g Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())
		if err := g.Check(p); err != nil {
			var denied *PermissionDeniedError
			switch {
			case errors.As(err, &denied):
				writeDetail(w, http.StatusForbidden, denied.Error())
			default:
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeDetail(w, http.StatusUnauthorized, "Authentication required")
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CheckStream enforces the guard for a long-lived stream connection, where
// there is no HTTP response to carry the status code. On denial it returns
// the error together with the JSON payload (`{"detail": ...}`) the handler
// should send to the peer before closing the connection; on success both
// returns are nil.
func (g Guard) CheckStream(p *Principal) ([]byte, error) {
	err := g.Check(p)
	if err == nil {
		return nil, nil
	}
	detail := "Authentication required"
	var denied *PermissionDeniedError
	if errors.As(err, &denied) {
		detail = denied.Error()
	}
	payload, _ := json.Marshal(map[string]string{"detail": detail})
	return payload, err
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
