package dispatchtx

import (
	"context"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/outbox"
)

// Repository is the transactional slice of storage the assignment engine
// works against. Driver selection, delivery insertion, the load increment
// and side-effect enqueueing all happen inside one transaction.
type Repository interface {
	FindAvailableDriverForUpdate(ctx context.Context, city string) (*domain.Driver, error)
	GetDriverForUpdate(ctx context.Context, driverID int64) (*domain.Driver, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)
	InsertDelivery(ctx context.Context, d *domain.Delivery) error
	UpdateDeliveryStatus(ctx context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error)
	IncrementDriverLoad(ctx context.Context, driverID int64) (*domain.Driver, error)
	DecrementDriverLoad(ctx context.Context, driverID int64) (*domain.Driver, error)
	EnqueueOutbox(ctx context.Context, t outbox.Task) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
