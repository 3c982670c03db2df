package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

type stubRepo struct {
	createFn        func(ctx context.Context, d *domain.Driver) (int64, error)
	updatePartialFn func(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error)
	setStatusFn     func(ctx context.Context, id int64, status domain.DriverStatus) error
	findAvailableFn func(ctx context.Context, city string) ([]domain.Driver, error)
	getByUserFn     func(ctx context.Context, userID string) (*domain.Driver, error)
}

func (s *stubRepo) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	return s.getByUserFn(ctx, userID)
}

func (s *stubRepo) Create(ctx context.Context, d *domain.Driver) (int64, error) {
	return s.createFn(ctx, d)
}

func (s *stubRepo) UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error) {
	return s.updatePartialFn(ctx, u)
}

func (s *stubRepo) SetStatus(ctx context.Context, id int64, status domain.DriverStatus) error {
	if s.setStatusFn != nil {
		return s.setStatusFn(ctx, id, status)
	}
	return nil
}

func (s *stubRepo) FindAvailable(ctx context.Context, city string) ([]domain.Driver, error) {
	return s.findAvailableFn(ctx, city)
}

func (s *stubRepo) IncrementLoad(context.Context, int64) (*domain.Driver, error) { return nil, nil }
func (s *stubRepo) DecrementLoad(context.Context, int64) (*domain.Driver, error) { return nil, nil }

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubRepo{}, time.Second)

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"empty user", RegisterInput{Name: "Kate", City: "Springfield"}},
		{"empty name", RegisterInput{UserID: "u-1", City: "Springfield"}},
		{"empty city", RegisterInput{UserID: "u-1", Name: "Kate"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestRegisterDefaults(t *testing.T) {
	t.Parallel()

	var created *domain.Driver
	repo := &stubRepo{
		createFn: func(_ context.Context, d *domain.Driver) (int64, error) {
			created = d
			return 42, nil
		},
	}
	svc := NewService(repo, time.Second)

	d, err := svc.Register(context.Background(), RegisterInput{
		UserID: " u-1 ", Name: " Kate ", City: "Springfield",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, int64(42), d.ID)
	assert.Equal(t, "u-1", d.UserID)
	assert.Equal(t, "Kate", d.Name)
	assert.Equal(t, domain.StatusOffline, d.Status)
	assert.Equal(t, 0, d.ActiveDeliveries)
	assert.Equal(t, 1, d.MaxConcurrentDeliveries)
	assert.Equal(t, []string{"Springfield"}, d.ServiceAreas)
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{
		createFn: func(context.Context, *domain.Driver) (int64, error) {
			return 0, apperr.ErrConflict
		},
	}
	svc := NewService(repo, time.Second)

	_, err := svc.Register(context.Background(), RegisterInput{
		UserID: "u-1", Name: "Kate", City: "Springfield",
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUpdateStatusRequiresCity(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubRepo{}, time.Second)

	_, err := svc.UpdateStatus(context.Background(), domain.PartialDriverUpdate{UserID: "u-1"})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestUpdateStatusUnknownDriver(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{
		updatePartialFn: func(context.Context, domain.PartialDriverUpdate) (*domain.Driver, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, time.Second)

	_, err := svc.UpdateStatus(context.Background(), domain.PartialDriverUpdate{
		UserID: "ghost", City: "Boston",
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateStatusAutoTransitionPersisted(t *testing.T) {
	t.Parallel()

	// driver reports available but is already at capacity
	repo := &stubRepo{
		updatePartialFn: func(context.Context, domain.PartialDriverUpdate) (*domain.Driver, error) {
			return &domain.Driver{
				ID: 5, UserID: "u-1", Status: domain.StatusAvailable,
				City: "Boston", ActiveDeliveries: 1, MaxConcurrentDeliveries: 1,
			}, nil
		},
	}
	var persisted domain.DriverStatus
	repo.setStatusFn = func(_ context.Context, id int64, status domain.DriverStatus) error {
		persisted = status
		return nil
	}
	svc := NewService(repo, time.Second)

	st := domain.StatusAvailable
	d, err := svc.UpdateStatus(context.Background(), domain.PartialDriverUpdate{
		UserID: "u-1", City: "Boston", Status: &st,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBusy, d.Status)
	assert.Equal(t, domain.StatusBusy, persisted)
}

func TestUpdateStatusOfflineSticky(t *testing.T) {
	t.Parallel()

	setStatusCalled := false
	repo := &stubRepo{
		updatePartialFn: func(context.Context, domain.PartialDriverUpdate) (*domain.Driver, error) {
			return &domain.Driver{
				ID: 5, UserID: "u-1", Status: domain.StatusOffline,
				City: "Boston", ActiveDeliveries: 1, MaxConcurrentDeliveries: 1,
			}, nil
		},
		setStatusFn: func(context.Context, int64, domain.DriverStatus) error {
			setStatusCalled = true
			return nil
		},
	}
	svc := NewService(repo, time.Second)

	d, err := svc.UpdateStatus(context.Background(), domain.PartialDriverUpdate{
		UserID: "u-1", City: "Boston",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOffline, d.Status)
	assert.False(t, setStatusCalled, "offline is never auto-overridden")
}

func TestFindAvailableTrimsCity(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{
		findAvailableFn: func(_ context.Context, city string) ([]domain.Driver, error) {
			assert.Equal(t, "Springfield", city)
			return []domain.Driver{{ID: 1}}, nil
		},
	}
	svc := NewService(repo, time.Second)

	got, err := svc.FindAvailable(context.Background(), "  Springfield  ")
	require.NoError(t, err)
	require.Len(t, got, 1)
}
