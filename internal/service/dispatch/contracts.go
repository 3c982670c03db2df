package dispatch

import (
	"context"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/gateway/orders"
	"delivery-dispatch/internal/ports/dispatchtx"
)

// deliveryRepository is the storage slice the assignment engine needs:
// the idempotency pre-check and the assignment transaction.
type deliveryRepository interface {
	GetByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error
}

// orderGateway fetches order documents for best-effort enrichment.
type orderGateway interface {
	GetByID(ctx context.Context, id string) (*orders.Order, error)
}
