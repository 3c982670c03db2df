package orders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByIDDecodesOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/orders/order-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "order-1",
			"userId": "customer-1",
			"status": "confirmed",
			"restaurantName": "Pizza Planet",
			"deliveryAddress": "742 Evergreen Terrace, Springfield, USA"
		}`))
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, srv.Client())
	ord, err := g.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotNil(t, ord)
	assert.Equal(t, "customer-1", ord.UserID)
	assert.Equal(t, "Pizza Planet", ord.RestaurantName)
	assert.Equal(t, "742 Evergreen Terrace, Springfield, USA", ord.Address().Raw)
}

func TestGetByIDNotFoundIsNilNil(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, srv.Client())
	ord, err := g.GetByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, ord)
}

func TestGetByIDServerErrorIsStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, srv.Client())
	_, err := g.GetByID(context.Background(), "order-1")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
}

func TestMarkDeliveryAssignedPutsAssignDelivery(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, srv.Client())
	require.NoError(t, g.MarkDeliveryAssigned(context.Background(), "order-1"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/orders/order-1/assign-delivery", gotPath)
}

func TestMarkDeliveryAssignedPropagatesStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, srv.Client())
	err := g.MarkDeliveryAssigned(context.Background(), "order-1")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.Code)
}

func TestGetByIDEscapesOrderID(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewHTTPGateway(srv.URL, srv.Client())
	_, err := g.GetByID(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/a%2Fb", gotPath)
}
