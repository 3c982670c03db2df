package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/outbox"
	"delivery-dispatch/internal/ports/dispatchtx"
)

const unknownRestaurant = "Unknown Restaurant"

// Service - the assignment engine. It matches orders to drivers by
// city, creates the unique delivery record, bumps the driver's load
// and enqueues the cross-service side effects, all in one transaction.
type Service struct {
	repo             deliveryRepository
	orders           orderGateway
	operationTimeout time.Duration
	logger           logx.Logger
	assignments      *prometheus.CounterVec
}

// NewService creates the assignment engine.
func NewService(r deliveryRepository, og orderGateway, timeout time.Duration, logger logx.Logger, assignments *prometheus.CounterVec) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             r,
		orders:           og,
		operationTimeout: timeout,
		logger:           logger,
		assignments:      assignments,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// AssignOrder carries an auto-assignment request.
type AssignOrder struct {
	OrderID        string
	Address        domain.Address
	RestaurantName string
	RestaurantID   string
}

// AutoAssign matches the order to the least-loaded available driver in
// the order's city. Repeated calls for an already-assigned order
// short-circuit to the existing delivery instead of erroring: the
// polling admin UI may invoke this any number of times.
func (s *Service) AutoAssign(ctx context.Context, req AssignOrder) (domain.AssignResult, error) {
	orderID, err := validateOrderID(req.OrderID)
	if err != nil {
		return domain.AssignResult{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// Idempotent short-circuit before touching any driver state.
	if existing, err := s.repo.GetByOrderID(ctx, orderID); err != nil {
		return domain.AssignResult{}, err
	} else if existing != nil {
		s.count("auto", "already_assigned")
		return alreadyAssigned(*existing), nil
	}

	city, ok := req.Address.City()
	if !ok {
		s.count("auto", "no_city")
		return domain.AssignResult{}, apperr.ErrNoCity
	}

	enrich := s.enrichFromOrder(ctx, orderID, req.RestaurantName)

	var result domain.AssignResult
	err = s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		drv, err := tx.FindAvailableDriverForUpdate(ctx, city)
		if err != nil {
			return err
		}
		if drv == nil {
			return apperr.ErrNoDriver
		}
		return s.assignInTx(ctx, tx, drv, orderID, req.Address, enrich, &result)
	})
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrConflict):
		// Lost the insert race: convert into the idempotent path.
		return s.recoverExisting(ctx, "auto", orderID)
	case errors.Is(err, apperr.ErrNoDriver):
		s.count("auto", "no_driver")
		return domain.AssignResult{}, err
	default:
		s.count("auto", "error")
		return domain.AssignResult{}, err
	}

	s.count("auto", "assigned")
	s.logger.Info("delivery assigned",
		logx.String("event", "delivery_assigned"),
		logx.String("order_id", orderID),
		logx.Int64("driver_id", result.DriverID),
		logx.String("city", result.DriverCity),
	)
	return result, nil
}

// ManualAssign assigns an admin-chosen driver, bypassing city matching.
// Duplicate orders take the same idempotent path as auto-assignment.
func (s *Service) ManualAssign(ctx context.Context, orderID string, driverID int64) (domain.AssignResult, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.AssignResult{}, err
	}
	if driverID <= 0 {
		return domain.AssignResult{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	enrich := s.enrichFromOrder(ctx, orderID, "")

	var result domain.AssignResult
	err = s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		drv, err := tx.GetDriverForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if drv == nil {
			return apperr.ErrNotFound
		}
		return s.assignInTx(ctx, tx, drv, orderID, enrich.address, enrich, &result)
	})
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrConflict):
		return s.recoverExisting(ctx, "manual", orderID)
	default:
		s.count("manual", "error")
		return domain.AssignResult{}, err
	}

	s.count("manual", "assigned")
	s.logger.Info("delivery assigned",
		logx.String("event", "delivery_assigned"),
		logx.String("mode", "manual"),
		logx.String("order_id", orderID),
		logx.Int64("driver_id", result.DriverID),
	)
	return result, nil
}

// assignInTx is the shared tail of both assignment paths: insert the
// unique delivery record, bump the driver's load and enqueue the
// side effects, all inside the caller's transaction.
func (s *Service) assignInTx(ctx context.Context, tx dispatchtx.Repository, drv *domain.Driver, orderID string, addr domain.Address, enrich enrichment, result *domain.AssignResult) error {
	d := &domain.Delivery{
		OrderID:        orderID,
		DriverID:       drv.ID,
		RestaurantName: enrich.restaurantName,
		Status:         domain.DeliveryAssigned,
		Address:        addr,
		PaymentMethod:  enrich.paymentMethod,
		PaymentStatus:  enrich.paymentStatus,
	}
	if err := tx.InsertDelivery(ctx, d); err != nil {
		return err
	}

	if _, err := tx.IncrementDriverLoad(ctx, drv.ID); err != nil {
		return err
	}

	if err := s.enqueueSideEffects(ctx, tx, d, drv); err != nil {
		return err
	}

	*result = domain.AssignResult{
		Delivery:   *d,
		DriverID:   drv.ID,
		DriverName: drv.Name,
		DriverCity: drv.City,
	}
	return nil
}

func (s *Service) enqueueSideEffects(ctx context.Context, tx dispatchtx.Repository, d *domain.Delivery, drv *domain.Driver) error {
	sync, err := outbox.NewTask(outbox.KindOrderAssignSync, outbox.OrderAssignSyncPayload{
		OrderID: d.OrderID,
	})
	if err != nil {
		return err
	}
	if err := tx.EnqueueOutbox(ctx, sync); err != nil {
		return err
	}

	notifyDriver, err := outbox.NewTask(outbox.KindDriverNotification, outbox.DriverNotificationPayload{
		DriverUserID:   drv.UserID,
		OrderID:        d.OrderID,
		Address:        d.Address.Formatted(),
		RestaurantName: d.RestaurantName,
	})
	if err != nil {
		return err
	}
	return tx.EnqueueOutbox(ctx, notifyDriver)
}

// recoverExisting turns a lost creation race into an idempotent success.
func (s *Service) recoverExisting(ctx context.Context, mode, orderID string) (domain.AssignResult, error) {
	existing, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return domain.AssignResult{}, err
	}
	if existing == nil {
		return domain.AssignResult{}, apperr.ErrConflict
	}
	s.count(mode, "already_assigned")
	return alreadyAssigned(*existing), nil
}

type enrichment struct {
	restaurantName string
	paymentMethod  string
	paymentStatus  string
	address        domain.Address
}

// enrichFromOrder resolves the restaurant name and address details from
// the order service. Strictly best-effort: a failed lookup falls back
// to placeholders and never aborts the assignment.
func (s *Service) enrichFromOrder(ctx context.Context, orderID, restaurantName string) enrichment {
	e := enrichment{restaurantName: strings.TrimSpace(restaurantName)}

	// The order document is only fetched when the caller did not pass
	// the restaurant name along.
	if s.orders != nil && e.restaurantName == "" {
		ord, err := s.orders.GetByID(ctx, orderID)
		switch {
		case err != nil:
			s.logger.Warn("order enrichment failed",
				logx.String("order_id", orderID),
				logx.Err(err),
			)
		case ord != nil:
			e.restaurantName = strings.TrimSpace(ord.RestaurantName)
			e.paymentMethod = ord.PaymentMethod
			e.paymentStatus = ord.PaymentStatus
			e.address = ord.Address()
		}
	}
	if e.restaurantName == "" {
		e.restaurantName = unknownRestaurant
	}
	return e
}

func (s *Service) count(mode, outcome string) {
	if s.assignments != nil {
		s.assignments.WithLabelValues(mode, outcome).Inc()
	}
}

func alreadyAssigned(d domain.Delivery) domain.AssignResult {
	return domain.AssignResult{
		Delivery:        d,
		DriverID:        d.DriverID,
		AlreadyAssigned: true,
	}
}

func validateOrderID(raw string) (string, error) {
	orderID := strings.TrimSpace(raw)
	if orderID == "" {
		return "", apperr.ErrInvalid
	}
	return orderID, nil
}
