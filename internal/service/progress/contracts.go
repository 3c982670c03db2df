package progress

import (
	"context"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/ports/dispatchtx"
)

type deliveryRepository interface {
	Get(ctx context.Context, id int64) (*domain.Delivery, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	UpdateStatus(ctx context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error)
	WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error
}

type driverDirectory interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Driver, error)
}

// trackCache is the optional customer-facing tracking cache.
type trackCache interface {
	Get(ctx context.Context, orderID string) (*domain.TrackingInfo, error)
	Set(ctx context.Context, info domain.TrackingInfo) error
	Invalidate(ctx context.Context, orderID string) error
}
