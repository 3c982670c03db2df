package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Identity is the caller identity established by the external auth
// collaborator and forwarded in trusted headers.
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

// WithIdentity extracts X-User-Id/X-User-Role into the request context.
// Requests without the headers pass through with an empty identity;
// handlers that require a caller reject those themselves.
func WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			UserID: strings.TrimSpace(r.Header.Get("X-User-Id")),
			Role:   strings.TrimSpace(r.Header.Get("X-User-Role")),
		}
		if id.UserID != "" || id.Role != "" {
			r = r.WithContext(context.WithValue(r.Context(), identityKey{}, id))
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithIdentity returns a context carrying the caller identity.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
