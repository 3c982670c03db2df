package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/driver-user-5/email", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"kate@example.com"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	email, err := c.Email(context.Background(), "driver-user-5")
	require.NoError(t, err)
	assert.Equal(t, "kate@example.com", email)
}

func TestEmailNon2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	_, err := c.Email(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 404")
}
