package users

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client looks up user contact details on the user service.
type Client struct {
	base   string
	client *http.Client
}

// New creates a user-service client for the given base URL.
func New(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), client: client}
}

// Email returns the e-mail address registered for the user.
func (c *Client) Email(ctx context.Context, userID string) (string, error) {
	u := c.base + "/api/users/" + url.PathEscape(userID) + "/email"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("user gateway: build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("user gateway: Email: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("user gateway: %s returned %d", u, resp.StatusCode)
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("user gateway: decode email for %q: %w", userID, err)
	}
	return body.Email, nil
}
