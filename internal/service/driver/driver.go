package driver

import (
	"context"
	"strings"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

// Service coordinates the driver directory: registration, status
// updates with the busy/available auto-transition, and availability
// lookups for the assignment engine.
type Service struct {
	repo             driverRepository
	operationTimeout time.Duration
}

// NewService creates and configures a driver directory Service.
func NewService(r driverRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// RegisterInput carries the fields of a driver registration.
type RegisterInput struct {
	UserID       string
	Name         string
	City         string
	Area         string
	ServiceAreas []string
}

func validateRegister(in *RegisterInput) error {
	if strings.TrimSpace(in.UserID) == "" {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(in.Name) == "" {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(in.City) == "" {
		return apperr.ErrInvalid
	}
	return nil
}

// Register creates a driver profile: one per user, initially offline
// with zero load and capacity one.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Driver, error) {
	if err := validateRegister(&in); err != nil {
		return nil, err
	}

	d := &domain.Driver{
		UserID:                  strings.TrimSpace(in.UserID),
		Name:                    strings.TrimSpace(in.Name),
		Status:                  domain.StatusOffline,
		City:                    strings.TrimSpace(in.City),
		Area:                    strings.TrimSpace(in.Area),
		ServiceAreas:            in.ServiceAreas,
		ActiveDeliveries:        0,
		MaxConcurrentDeliveries: 1,
	}
	if !d.HasServiceArea(d.City) {
		d.ServiceAreas = append(d.ServiceAreas, d.City)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func validateUpdate(u *domain.PartialDriverUpdate) error {
	if strings.TrimSpace(u.UserID) == "" {
		return apperr.ErrInvalid
	}
	if strings.TrimSpace(u.City) == "" {
		return apperr.ErrInvalid
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperr.ErrInvalid
	}
	if u.ActiveDeliveries != nil && *u.ActiveDeliveries < 0 {
		return apperr.ErrInvalid
	}
	if u.MaxConcurrentDeliveries != nil && *u.MaxConcurrentDeliveries < 1 {
		return apperr.ErrInvalid
	}
	return nil
}

// UpdateStatus applies a driver-initiated status update. City is
// required; after the explicit fields are applied the busy/available
// auto-transition rule runs and is persisted when it changes the status.
func (s *Service) UpdateStatus(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error) {
	if err := validateUpdate(&u); err != nil {
		return nil, err
	}
	u.City = strings.TrimSpace(u.City)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}

	before := d.Status
	d.RecomputeStatus()
	if d.Status != before {
		if err := s.repo.SetStatus(ctx, d.ID, d.Status); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// FindAvailable lists drivers able to take an order in the city,
// least-loaded first.
func (s *Service) FindAvailable(ctx context.Context, city string) ([]domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.FindAvailable(ctx, strings.TrimSpace(city))
}

// Get returns the driver profile registered for a user.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// IncrementLoad bumps a driver's active delivery count.
func (s *Service) IncrementLoad(ctx context.Context, id int64) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.IncrementLoad(ctx, id)
}

// DecrementLoad lowers a driver's active delivery count.
func (s *Service) DecrementLoad(ctx context.Context, id int64) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.DecrementLoad(ctx, id)
}
