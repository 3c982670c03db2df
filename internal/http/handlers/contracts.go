package handlers

import (
	"context"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/service/dispatch"
	"delivery-dispatch/internal/service/driver"
	"delivery-dispatch/internal/service/progress"
)

type dispatchUsecase interface {
	AutoAssign(ctx context.Context, req dispatch.AssignOrder) (domain.AssignResult, error)
	ManualAssign(ctx context.Context, orderID string, driverID int64) (domain.AssignResult, error)
}

// NewDispatchUsecase wires a dispatch Service into a dispatchUsecase.
func NewDispatchUsecase(svc *dispatch.Service) dispatchUsecase {
	return svc
}

type driverUsecase interface {
	Register(ctx context.Context, in driver.RegisterInput) (*domain.Driver, error)
	UpdateStatus(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error)
	FindAvailable(ctx context.Context, city string) ([]domain.Driver, error)
}

// NewDriverUsecase wires a driver Service into a driverUsecase.
func NewDriverUsecase(svc *driver.Service) driverUsecase {
	return svc
}

type progressUsecase interface {
	UpdateStatus(ctx context.Context, deliveryID int64, u domain.DeliveryUpdate, callerUserID string) (*domain.Delivery, error)
	Track(ctx context.Context, orderID string) (domain.TrackingInfo, error)
}

// NewProgressUsecase wires a progress Service into a progressUsecase.
func NewProgressUsecase(svc *progress.Service) progressUsecase {
	return svc
}
