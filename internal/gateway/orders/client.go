package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"delivery-dispatch/internal/domain"
)

// Order is the slice of the order document this service consumes.
type Order struct {
	ID                string                    `json:"id"`
	UserID            string                    `json:"userId"`
	Status            string                    `json:"status"`
	RestaurantName    string                    `json:"restaurantName"`
	DeliveryAddress   string                    `json:"deliveryAddress"`
	StructuredAddress *domain.StructuredAddress `json:"structuredAddress"`
	PaymentMethod     string                    `json:"paymentMethod"`
	PaymentStatus     string                    `json:"paymentStatus"`
}

// Address folds the order's two address shapes into the domain union.
func (o *Order) Address() domain.Address {
	return domain.Address{Raw: o.DeliveryAddress, Structured: o.StructuredAddress}
}

// StatusError reports a non-2xx response from the order service.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("order service: %s returned %d", e.URL, e.Code)
}

// HTTPGateway is an orders gateway backed by the order service's REST API.
type HTTPGateway struct {
	base   string
	client *http.Client
}

// NewHTTPGateway creates an orders gateway for the given base URL.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGateway{base: strings.TrimRight(baseURL, "/"), client: client}
}

// GetByID fetches an order by ID. A 404 maps to (nil, nil).
func (g *HTTPGateway) GetByID(ctx context.Context, id string) (*Order, error) {
	u := g.base + "/api/orders/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("order gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order gateway: GetByID: %w", err)
	}
	defer drainClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &StatusError{Code: resp.StatusCode, URL: u}
	}

	var ord Order
	if err := json.NewDecoder(resp.Body).Decode(&ord); err != nil {
		return nil, fmt.Errorf("order gateway: decode order %q: %w", id, err)
	}
	return &ord, nil
}

// MarkDeliveryAssigned flips deliveryAssigned and moves the order to
// out_for_delivery on the order service.
func (g *HTTPGateway) MarkDeliveryAssigned(ctx context.Context, orderID string) error {
	u := g.base + "/api/orders/" + url.PathEscape(orderID) + "/assign-delivery"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, nil)
	if err != nil {
		return fmt.Errorf("order gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("order gateway: MarkDeliveryAssigned: %w", err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, URL: u}
	}
	return nil
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
