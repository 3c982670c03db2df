package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"delivery-dispatch/internal/logx"
)

type gateway interface {
	GetByID(context.Context, string) (*Order, error)
	MarkDeliveryAssigned(context.Context, string) error
}

type counter interface {
	Inc()
}

// RetryConfig describes the retry behavior of RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway decorates an orders gateway with bounded
// exponential-backoff retries on transient failures.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway wraps next with retry behavior; returns nil when next is nil.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// GetByID fetches an order, retrying transient failures.
func (g *RetryingGateway) GetByID(ctx context.Context, id string) (*Order, error) {
	var (
		ord     *Order
		lastErr error
	)
	err := g.retry(ctx, "GetByID", func() error {
		var err error
		ord, err = g.next.GetByID(ctx, id)
		return err
	})
	if err != nil {
		lastErr = err
	}
	return ord, lastErr
}

// MarkDeliveryAssigned propagates assignment, retrying transient failures.
func (g *RetryingGateway) MarkDeliveryAssigned(ctx context.Context, orderID string) error {
	return g.retry(ctx, "MarkDeliveryAssigned", func() error {
		return g.next.MarkDeliveryAssigned(ctx, orderID)
	})
}

func (g *RetryingGateway) retry(ctx context.Context, method string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("orders gateway retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

// isRetryable treats transport errors and throttling/server statuses as
// transient. Client errors are permanent.
func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// transport-level failure (connection refused, reset, ...)
	return true
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
