//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/repository"
)

type DriverRepositorySuite struct {
	suite.Suite
	repo *repository.DriverRepo
}

func (s *DriverRepositorySuite) SetupTest() {
	s.Require().NoError(truncateAll(context.Background(), tcPool))
	s.repo = repository.NewDriverRepo(tcPool)
}

func (s *DriverRepositorySuite) createDriver(userID, city string, status domain.DriverStatus, load int) int64 {
	id, err := s.repo.Create(context.Background(), &domain.Driver{
		UserID:                  userID,
		Name:                    "Driver " + userID,
		Status:                  status,
		City:                    city,
		ServiceAreas:            []string{city},
		ActiveDeliveries:        load,
		MaxConcurrentDeliveries: 1,
	})
	s.Require().NoError(err)
	return id
}

func (s *DriverRepositorySuite) TestCreateAndGetByUserID() {
	ctx := context.Background()

	id := s.createDriver("u-1", "Springfield", domain.StatusOffline, 0)
	s.Require().Positive(id)

	got, err := s.repo.GetByUserID(ctx, "u-1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(id, got.ID)
	s.Equal(domain.StatusOffline, got.Status)
	s.Equal([]string{"Springfield"}, got.ServiceAreas)
}

func (s *DriverRepositorySuite) TestCreateDuplicateUserConflict() {
	s.createDriver("u-1", "Springfield", domain.StatusOffline, 0)

	_, err := s.repo.Create(context.Background(), &domain.Driver{
		UserID: "u-1", Name: "Again", Status: domain.StatusOffline,
		City: "Springfield", MaxConcurrentDeliveries: 1,
	})
	s.Require().ErrorIs(err, apperr.ErrConflict)
}

func (s *DriverRepositorySuite) TestGetByUserIDAbsentReturnsNil() {
	got, err := s.repo.GetByUserID(context.Background(), "nope")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *DriverRepositorySuite) TestFindAvailableFiltersAndOrder() {
	ctx := context.Background()

	first := s.createDriver("u-1", "Springfield", domain.StatusAvailable, 0)
	second := s.createDriver("u-2", "East Springfield", domain.StatusAvailable, 0)
	s.createDriver("u-3", "Springfield", domain.StatusOffline, 0)
	s.createDriver("u-4", "Springfield", domain.StatusAvailable, 1) // at capacity
	s.createDriver("u-5", "Boston", domain.StatusAvailable, 0)

	got, err := s.repo.FindAvailable(ctx, "springfield")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(first, got[0].ID)
	s.Equal(second, got[1].ID)

	all, err := s.repo.FindAvailable(ctx, "")
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *DriverRepositorySuite) TestIncrementLoadFlipsBusy() {
	ctx := context.Background()
	id := s.createDriver("u-1", "Springfield", domain.StatusAvailable, 0)

	d, err := s.repo.IncrementLoad(ctx, id)
	s.Require().NoError(err)
	s.Equal(1, d.ActiveDeliveries)
	s.Equal(domain.StatusBusy, d.Status)
}

func (s *DriverRepositorySuite) TestDecrementLoadRevertsToAvailable() {
	ctx := context.Background()
	id := s.createDriver("u-1", "Springfield", domain.StatusBusy, 1)

	d, err := s.repo.DecrementLoad(ctx, id)
	s.Require().NoError(err)
	s.Equal(0, d.ActiveDeliveries)
	s.Equal(domain.StatusAvailable, d.Status)

	// never goes below zero
	d, err = s.repo.DecrementLoad(ctx, id)
	s.Require().NoError(err)
	s.Equal(0, d.ActiveDeliveries)
}

func (s *DriverRepositorySuite) TestIncrementLoadKeepsOfflineSticky() {
	ctx := context.Background()
	id := s.createDriver("u-1", "Springfield", domain.StatusOffline, 0)

	d, err := s.repo.IncrementLoad(ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.StatusOffline, d.Status)
}

func (s *DriverRepositorySuite) TestUpdatePartialAppendsServiceArea() {
	ctx := context.Background()
	s.createDriver("u-1", "Springfield", domain.StatusOffline, 0)

	st := domain.StatusAvailable
	d, err := s.repo.UpdatePartial(ctx, domain.PartialDriverUpdate{
		UserID: "u-1",
		Status: &st,
		City:   "Boston",
	})
	s.Require().NoError(err)
	s.Require().NotNil(d)
	s.Equal(domain.StatusAvailable, d.Status)
	s.Equal("Boston", d.City)
	s.Equal([]string{"Springfield", "Boston"}, d.ServiceAreas)

	// same city again: no duplicate area
	d, err = s.repo.UpdatePartial(ctx, domain.PartialDriverUpdate{UserID: "u-1", City: "Boston"})
	s.Require().NoError(err)
	s.Equal([]string{"Springfield", "Boston"}, d.ServiceAreas)
}

func (s *DriverRepositorySuite) TestUpdatePartialUnknownUserReturnsNil() {
	d, err := s.repo.UpdatePartial(context.Background(), domain.PartialDriverUpdate{
		UserID: "ghost", City: "Boston",
	})
	s.Require().NoError(err)
	s.Nil(d)
}

func TestDriverRepositorySuite(t *testing.T) {
	suite.Run(t, new(DriverRepositorySuite))
}
