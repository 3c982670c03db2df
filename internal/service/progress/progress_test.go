package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/outbox"
	"delivery-dispatch/internal/ports/dispatchtx"
	testlog "delivery-dispatch/internal/testutil"
)

type stubTx struct {
	updateFn func(ctx context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error)

	decremented []int64
	enqueued    []outbox.Task
}

func (s *stubTx) FindAvailableDriverForUpdate(context.Context, string) (*domain.Driver, error) {
	return nil, nil
}

func (s *stubTx) GetDriverForUpdate(context.Context, int64) (*domain.Driver, error) {
	return nil, nil
}

func (s *stubTx) GetByOrderID(context.Context, string) (*domain.Delivery, error) {
	return nil, nil
}

func (s *stubTx) InsertDelivery(context.Context, *domain.Delivery) error { return nil }

func (s *stubTx) UpdateDeliveryStatus(ctx context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error) {
	return s.updateFn(ctx, id, u)
}

func (s *stubTx) IncrementDriverLoad(context.Context, int64) (*domain.Driver, error) {
	return nil, nil
}

func (s *stubTx) DecrementDriverLoad(_ context.Context, driverID int64) (*domain.Driver, error) {
	s.decremented = append(s.decremented, driverID)
	return &domain.Driver{ID: driverID}, nil
}

func (s *stubTx) EnqueueOutbox(_ context.Context, t outbox.Task) error {
	s.enqueued = append(s.enqueued, t)
	return nil
}

type stubDeliveries struct {
	tx       *stubTx
	getFn    func(ctx context.Context, id int64) (*domain.Delivery, error)
	byOrder  func(ctx context.Context, orderID string) (*domain.Delivery, error)
	updateFn func(ctx context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error)
}

func (s *stubDeliveries) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	return s.getFn(ctx, id)
}

func (s *stubDeliveries) GetByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	return s.byOrder(ctx, orderID)
}

func (s *stubDeliveries) UpdateStatus(ctx context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error) {
	return s.updateFn(ctx, id, u)
}

func (s *stubDeliveries) WithTx(_ context.Context, fn func(tx dispatchtx.Repository) error) error {
	return fn(s.tx)
}

type stubDrivers struct {
	byUser func(ctx context.Context, userID string) (*domain.Driver, error)
}

func (s *stubDrivers) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	return s.byUser(ctx, userID)
}

type memCache struct {
	entries map[string]domain.TrackingInfo
	gets    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]domain.TrackingInfo{}}
}

func (c *memCache) Get(_ context.Context, orderID string) (*domain.TrackingInfo, error) {
	c.gets++
	if info, ok := c.entries[orderID]; ok {
		return &info, nil
	}
	return nil, nil
}

func (c *memCache) Set(_ context.Context, info domain.TrackingInfo) error {
	c.entries[info.OrderID] = info
	return nil
}

func (c *memCache) Invalidate(_ context.Context, orderID string) error {
	delete(c.entries, orderID)
	return nil
}

func assignedDelivery() *domain.Delivery {
	return &domain.Delivery{
		ID:             10,
		OrderID:        "order-1",
		DriverID:       5,
		RestaurantName: "Pizza Planet",
		Status:         domain.DeliveryAssigned,
	}
}

func owningDriver() *domain.Driver {
	return &domain.Driver{ID: 5, UserID: "driver-user-5"}
}

func statusPtr(s domain.DeliveryStatus) *domain.DeliveryStatus { return &s }

func newTestService(d *stubDeliveries, drv *stubDrivers, cache trackCache) *Service {
	return NewService(d, drv, cache, time.Second, testlog.New().Logger())
}

func TestUpdateStatusNotFound(t *testing.T) {
	t.Parallel()

	deliveries := &stubDeliveries{
		getFn: func(context.Context, int64) (*domain.Delivery, error) { return nil, nil },
	}
	svc := newTestService(deliveries, &stubDrivers{}, nil)

	_, err := svc.UpdateStatus(context.Background(), 10,
		domain.DeliveryUpdate{Status: statusPtr(domain.DeliveryPickedUp)}, "driver-user-5")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateStatusForbiddenForOtherDriver(t *testing.T) {
	t.Parallel()

	deliveries := &stubDeliveries{
		getFn: func(context.Context, int64) (*domain.Delivery, error) { return assignedDelivery(), nil },
	}
	drivers := &stubDrivers{
		byUser: func(context.Context, string) (*domain.Driver, error) {
			return &domain.Driver{ID: 99, UserID: "intruder"}, nil
		},
	}
	svc := newTestService(deliveries, drivers, nil)

	_, err := svc.UpdateStatus(context.Background(), 10,
		domain.DeliveryUpdate{Status: statusPtr(domain.DeliveryPickedUp)}, "intruder")
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateStatusRejectsSkippedStep(t *testing.T) {
	t.Parallel()

	deliveries := &stubDeliveries{
		getFn: func(context.Context, int64) (*domain.Delivery, error) { return assignedDelivery(), nil },
	}
	drivers := &stubDrivers{
		byUser: func(context.Context, string) (*domain.Driver, error) { return owningDriver(), nil },
	}
	svc := newTestService(deliveries, drivers, nil)

	// assigned → delivered skips picked_up
	_, err := svc.UpdateStatus(context.Background(), 10,
		domain.DeliveryUpdate{Status: statusPtr(domain.DeliveryDelivered)}, "driver-user-5")
	require.ErrorIs(t, err, apperr.ErrBadTransition)
}

func TestUpdateStatusRejectsEmptyUpdate(t *testing.T) {
	t.Parallel()

	deliveries := &stubDeliveries{
		getFn: func(context.Context, int64) (*domain.Delivery, error) { return assignedDelivery(), nil },
	}
	drivers := &stubDrivers{
		byUser: func(context.Context, string) (*domain.Driver, error) { return owningDriver(), nil },
	}
	svc := newTestService(deliveries, drivers, nil)

	_, err := svc.UpdateStatus(context.Background(), 10, domain.DeliveryUpdate{}, "driver-user-5")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestUpdateStatusPickedUp(t *testing.T) {
	t.Parallel()

	deliveries := &stubDeliveries{
		getFn: func(context.Context, int64) (*domain.Delivery, error) { return assignedDelivery(), nil },
		updateFn: func(_ context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error) {
			d := assignedDelivery()
			d.Status = *u.Status
			return d, nil
		},
	}
	drivers := &stubDrivers{
		byUser: func(context.Context, string) (*domain.Driver, error) { return owningDriver(), nil },
	}
	cache := newMemCache()
	svc := newTestService(deliveries, drivers, cache)

	got, err := svc.UpdateStatus(context.Background(), 10,
		domain.DeliveryUpdate{Status: statusPtr(domain.DeliveryPickedUp)}, "driver-user-5")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryPickedUp, got.Status)

	// the cached tracking view follows the status change
	assert.Equal(t, "picked_up", cache.entries["order-1"].Status)
}

func TestUpdateStatusDeliveredReleasesDriver(t *testing.T) {
	t.Parallel()

	picked := assignedDelivery()
	picked.Status = domain.DeliveryPickedUp

	tx := &stubTx{
		updateFn: func(_ context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error) {
			d := assignedDelivery()
			d.Status = *u.Status
			return d, nil
		},
	}
	deliveries := &stubDeliveries{
		tx:    tx,
		getFn: func(context.Context, int64) (*domain.Delivery, error) { return picked, nil },
	}
	drivers := &stubDrivers{
		byUser: func(context.Context, string) (*domain.Driver, error) { return owningDriver(), nil },
	}
	svc := newTestService(deliveries, drivers, nil)

	got, err := svc.UpdateStatus(context.Background(), 10,
		domain.DeliveryUpdate{Status: statusPtr(domain.DeliveryDelivered)}, "driver-user-5")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryDelivered, got.Status)

	require.Equal(t, []int64{5}, tx.decremented)
	require.Len(t, tx.enqueued, 1)
	assert.Equal(t, outbox.KindCompleteNotification, tx.enqueued[0].Kind)
}

func TestTrackCacheMissThenHit(t *testing.T) {
	t.Parallel()

	dbReads := 0
	deliveries := &stubDeliveries{
		byOrder: func(context.Context, string) (*domain.Delivery, error) {
			dbReads++
			d := assignedDelivery()
			d.Location = "47.60,-122.33"
			return d, nil
		},
	}
	cache := newMemCache()
	svc := newTestService(deliveries, &stubDrivers{}, cache)

	info, err := svc.Track(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "assigned", info.Status)
	assert.Equal(t, "47.60,-122.33", info.Location)
	assert.Equal(t, 1, dbReads)

	info, err = svc.Track(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "assigned", info.Status)
	assert.Equal(t, 1, dbReads, "second read is served from the cache")
}

func TestTrackUnknownOrder(t *testing.T) {
	t.Parallel()

	deliveries := &stubDeliveries{
		byOrder: func(context.Context, string) (*domain.Delivery, error) { return nil, nil },
	}
	svc := newTestService(deliveries, &stubDrivers{}, nil)

	_, err := svc.Track(context.Background(), "ghost")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
