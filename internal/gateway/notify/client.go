package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DeliveryAssignment is the payload posted to the notification service
// when a driver receives a new assignment.
type DeliveryAssignment struct {
	Email          string `json:"email"`
	OrderID        string `json:"orderId"`
	Address        string `json:"address"`
	RestaurantName string `json:"restaurantName"`
}

// DeliveryComplete is the payload posted when a delivery reaches its
// terminal state.
type DeliveryComplete struct {
	Email          string `json:"email"`
	OrderID        string `json:"orderId"`
	RestaurantName string `json:"restaurantName"`
}

// Client dispatches notifications through the notification service.
type Client struct {
	base   string
	client *http.Client
}

// New creates a notification-service client for the given base URL.
func New(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), client: client}
}

// NotifyDriverAssignment posts a delivery-assignment notification.
func (c *Client) NotifyDriverAssignment(ctx context.Context, p DeliveryAssignment) error {
	return c.post(ctx, "/api/notifications/delivery-assignment", p)
}

// NotifyDeliveryComplete posts a customer delivery-complete notification.
func (c *Client) NotifyDeliveryComplete(ctx context.Context, p DeliveryComplete) error {
	return c.post(ctx, "/api/notifications/customer/delivery-complete", p)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify gateway: marshal: %w", err)
	}

	u := c.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("notify gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify gateway: %s: %w", path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify gateway: %s returned %d", u, resp.StatusCode)
	}
	return nil
}
