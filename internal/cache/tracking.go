package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"delivery-dispatch/internal/domain"
)

// TrackingCache caches the customer-facing tracking view in Redis.
// A nil *TrackingCache is a valid no-op cache.
type TrackingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a TrackingCache; returns nil when addr is empty, which
// disables caching entirely.
func New(addr string, ttl time.Duration) *TrackingCache {
	if addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &TrackingCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

func trackKey(orderID string) string { return "track:" + orderID }

// Get returns the cached tracking view, or nil on a miss.
func (c *TrackingCache) Get(ctx context.Context, orderID string) (*domain.TrackingInfo, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, trackKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var info domain.TrackingInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Set stores the tracking view with the configured TTL.
func (c *TrackingCache) Set(ctx context.Context, info domain.TrackingInfo) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, trackKey(info.OrderID), raw, c.ttl).Err()
}

// Invalidate drops the cached view for an order.
func (c *TrackingCache) Invalidate(ctx context.Context, orderID string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, trackKey(orderID)).Err()
}

// Close releases the underlying Redis connection.
func (c *TrackingCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
