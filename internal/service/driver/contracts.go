package driver

import (
	"context"

	"delivery-dispatch/internal/domain"
)

// driverRepository defines storage operations required by the directory.
type driverRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Driver, error)
	Create(ctx context.Context, d *domain.Driver) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error)
	SetStatus(ctx context.Context, id int64, status domain.DriverStatus) error
	FindAvailable(ctx context.Context, city string) ([]domain.Driver, error)
	IncrementLoad(ctx context.Context, id int64) (*domain.Driver, error)
	DecrementLoad(ctx context.Context, id int64) (*domain.Driver, error)
}
