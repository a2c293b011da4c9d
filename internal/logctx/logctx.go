// Package logctx enriches slog records with per-request authentication
// context carried on the context.Context. Install Handler around any
// slog.Handler at application wiring time; components then log normally and
// records pick up the request attributes automatically.
package logctx

import (
	"context"
	"log/slog"
)

// Handler wraps an slog.Handler and appends an "auth" attribute group from
// the context, when present.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if ad, ok := ctx.Value(authDataKey{}).(*AuthData); ok {
		r.AddAttrs(slog.Group("auth",
			slog.String("request_id", ad.RequestID),
			slog.String("path", ad.Path),
			slog.String("conn_kind", ad.ConnKind),
			slog.String("user_id", ad.UserID),
		))
	}
	return h.Handler.Handle(ctx, r)
}

type authDataKey struct{}

// AuthData describes one authentication attempt for log correlation.
// UserID is filled in after a successful authentication; the pointer is
// owned by the request goroutine and never shared across requests.
type AuthData struct {
	RequestID string
	Path      string
	ConnKind  string
	UserID    string
}

// WithAuthData attaches auth data to the context.
func WithAuthData(ctx context.Context, data *AuthData) context.Context {
	return context.WithValue(ctx, authDataKey{}, data)
}
