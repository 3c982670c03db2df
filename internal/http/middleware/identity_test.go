package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithIdentityExtractsHeaders(t *testing.T) {
	t.Parallel()

	var got Identity
	var found bool
	h := WithIdentity(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, found = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", " driver-user-5 ")
	req.Header.Set("X-User-Role", "driver")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, found)
	assert.Equal(t, "driver-user-5", got.UserID)
	assert.Equal(t, "driver", got.Role)
}

func TestWithIdentityMissingHeaders(t *testing.T) {
	t.Parallel()

	var found bool
	h := WithIdentity(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, found = IdentityFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, found)
}

func TestContextWithIdentityRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := ContextWithIdentity(context.Background(), Identity{UserID: "u-1", Role: "admin"})
	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", got.UserID)
}
