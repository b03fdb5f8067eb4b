// Package owner resolves which user's ledger a request operates on. The
// id comes from the X-User-ID header; a configured default covers the
// single-household deployment where clients send no header at all.
package owner

import (
	"context"
	"net/http"
	"strings"
)

// Header carries the requesting owner's id.
const Header = "X-User-ID"

type contextKey struct{}

// Middleware threads the owner id through the request context.
type Middleware struct {
	defaultUserID string
}

func NewMiddleware(defaultUserID string) *Middleware {
	return &Middleware{defaultUserID: defaultUserID}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(Header))
		if userID == "" {
			userID = m.defaultUserID
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a context carrying the owner id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID extracts the owner id from context.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
