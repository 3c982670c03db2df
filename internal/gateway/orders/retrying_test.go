package orders

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testlog "delivery-dispatch/internal/testutil"
)

type flakyGateway struct {
	failures int
	calls    int
	err      error
}

func (g *flakyGateway) GetByID(context.Context, string) (*Order, error) {
	g.calls++
	if g.calls <= g.failures {
		return nil, g.err
	}
	return &Order{ID: "order-1"}, nil
}

func (g *flakyGateway) MarkDeliveryAssigned(context.Context, string) error {
	g.calls++
	if g.calls <= g.failures {
		return g.err
	}
	return nil
}

type countingCounter struct{ n int }

func (c *countingCounter) Inc() { c.n++ }

func TestRetryingGatewayRecoversFromTransientFailure(t *testing.T) {
	t.Parallel()

	next := &flakyGateway{failures: 2, err: &StatusError{Code: http.StatusInternalServerError}}
	retries := &countingCounter{}
	g := NewRetryingGateway(next, testlog.New().Logger(), retries, RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
	})

	ord, err := g.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotNil(t, ord)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, 2, retries.n)
}

func TestRetryingGatewayStopsOnClientError(t *testing.T) {
	t.Parallel()

	next := &flakyGateway{failures: 10, err: &StatusError{Code: http.StatusBadRequest}}
	g := NewRetryingGateway(next, testlog.New().Logger(), nil, RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
	})

	err := g.MarkDeliveryAssigned(context.Background(), "order-1")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, next.calls, "4xx is permanent")
}

func TestRetryingGatewayRetriesOnThrottle(t *testing.T) {
	t.Parallel()

	next := &flakyGateway{failures: 1, err: &StatusError{Code: http.StatusTooManyRequests}}
	g := NewRetryingGateway(next, testlog.New().Logger(), nil, RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
	})

	require.NoError(t, g.MarkDeliveryAssigned(context.Background(), "order-1"))
	assert.Equal(t, 2, next.calls)
}

func TestRetryingGatewayExhaustsAttempts(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	next := &flakyGateway{failures: 10, err: boom}
	g := NewRetryingGateway(next, testlog.New().Logger(), nil, RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
	})

	err := g.MarkDeliveryAssigned(context.Background(), "order-1")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, next.calls)
}

func TestRetryingGatewayHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	next := &flakyGateway{failures: 10, err: &StatusError{Code: http.StatusInternalServerError}}
	g := NewRetryingGateway(next, testlog.New().Logger(), nil, RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
	})

	err := g.MarkDeliveryAssigned(ctx, "order-1")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls, "no retries after cancellation")
}

func TestNewRetryingGatewayNilNext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewRetryingGateway(nil, testlog.New().Logger(), nil, RetryConfig{}))
}
