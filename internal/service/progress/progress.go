package progress

import (
	"context"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/outbox"
	"delivery-dispatch/internal/ports/dispatchtx"
)

// Service handles driver-initiated delivery status transitions and the
// customer-facing tracking view.
type Service struct {
	deliveries       deliveryRepository
	drivers          driverDirectory
	cache            trackCache
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a progress Service. cache may be nil.
func NewService(deliveries deliveryRepository, drivers driverDirectory, cache trackCache, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		deliveries:       deliveries,
		drivers:          drivers,
		cache:            cache,
		operationTimeout: timeout,
		logger:           logger,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// UpdateStatus advances a delivery along assigned → picked_up →
// delivered. Only the assigned driver may move it, and only along the
// transition table: skipping picked_up or leaving delivered is
// rejected. Reaching delivered releases the driver's load and enqueues
// the customer notification in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, deliveryID int64, u domain.DeliveryUpdate, callerUserID string) (*domain.Delivery, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.deliveries.Get(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}

	caller, err := s.drivers.GetByUserID(ctx, callerUserID)
	if err != nil {
		return nil, err
	}
	if caller == nil || caller.ID != d.DriverID {
		return nil, apperr.ErrForbidden
	}

	if u.Status != nil {
		if !u.Status.Valid() {
			return nil, apperr.ErrInvalid
		}
		if !d.Status.CanTransition(*u.Status) {
			return nil, apperr.ErrBadTransition
		}
	}
	if u.Status == nil && u.Location == nil {
		return nil, apperr.ErrInvalid
	}

	var updated *domain.Delivery
	if u.Status != nil && *u.Status == domain.DeliveryDelivered {
		updated, err = s.complete(ctx, d, u)
	} else {
		updated, err = s.deliveries.UpdateStatus(ctx, deliveryID, u)
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.ErrNotFound
	}

	s.refreshTracking(ctx, *updated)

	s.logger.Info("delivery status updated",
		logx.String("event", "delivery_status_updated"),
		logx.String("order_id", updated.OrderID),
		logx.Int64("delivery_id", updated.ID),
		logx.String("status", string(updated.Status)),
	)
	return updated, nil
}

// complete runs the terminal transition: status write, driver load
// release and the customer notification enqueue commit together.
func (s *Service) complete(ctx context.Context, d *domain.Delivery, u domain.DeliveryUpdate) (*domain.Delivery, error) {
	caller := d.DriverID
	var updated *domain.Delivery
	err := s.deliveries.WithTx(ctx, func(tx dispatchtx.Repository) error {
		var err error
		updated, err = tx.UpdateDeliveryStatus(ctx, d.ID, u)
		if err != nil {
			return err
		}
		if updated == nil {
			return apperr.ErrNotFound
		}

		if _, err := tx.DecrementDriverLoad(ctx, caller); err != nil {
			return err
		}

		task, err := outbox.NewTask(outbox.KindCompleteNotification, outbox.CompleteNotificationPayload{
			OrderID:        updated.OrderID,
			RestaurantName: updated.RestaurantName,
		})
		if err != nil {
			return err
		}
		return tx.EnqueueOutbox(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Track returns the customer-facing view of a delivery, served from the
// cache when possible.
func (s *Service) Track(ctx context.Context, orderID string) (domain.TrackingInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.cache != nil {
		if info, err := s.cache.Get(ctx, orderID); err != nil {
			s.logger.Debug("tracking cache read failed", logx.Err(err))
		} else if info != nil {
			return *info, nil
		}
	}

	d, err := s.deliveries.GetByOrderID(ctx, orderID)
	if err != nil {
		return domain.TrackingInfo{}, err
	}
	if d == nil {
		return domain.TrackingInfo{}, apperr.ErrNotFound
	}

	info := trackingOf(*d)
	if s.cache != nil {
		if err := s.cache.Set(ctx, info); err != nil {
			s.logger.Debug("tracking cache write failed", logx.Err(err))
		}
	}
	return info, nil
}

// refreshTracking keeps the cached view in step with a status change.
// Cache failures never affect the primary operation.
func (s *Service) refreshTracking(ctx context.Context, d domain.Delivery) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, trackingOf(d)); err != nil {
		s.logger.Debug("tracking cache refresh failed",
			logx.String("order_id", d.OrderID),
			logx.Err(err),
		)
	}
}

func trackingOf(d domain.Delivery) domain.TrackingInfo {
	return domain.TrackingInfo{
		OrderID:  d.OrderID,
		Status:   string(d.Status),
		Location: d.Location,
	}
}
