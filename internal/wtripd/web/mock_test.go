package web

import (
	"context"

	"github.com/stretchr/testify/mock"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
)

type mockTrips struct {
	mock.Mock
}

func (m *mockTrips) ListTrips(ctx context.Context) ([]v1.Trip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]v1.Trip), args.Error(1)
}

func (m *mockTrips) GetTrip(ctx context.Context, id string) (*v1.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v1.Trip), args.Error(1)
}

func (m *mockTrips) ListTripsByTravelStyle(ctx context.Context, style string) ([]v1.Trip, error) {
	args := m.Called(ctx, style)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]v1.Trip), args.Error(1)
}

func (m *mockTrips) ListTripsByCountry(ctx context.Context, country string) ([]v1.Trip, error) {
	args := m.Called(ctx, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]v1.Trip), args.Error(1)
}

func (m *mockTrips) SearchTrips(ctx context.Context, query string) ([]v1.Trip, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]v1.Trip), args.Error(1)
}

func (m *mockTrips) ListTripsPaged(ctx context.Context, page v1.PageRequest) (*v1.TripList, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v1.TripList), args.Error(1)
}

func (m *mockTrips) CreateTrip(ctx context.Context, input *v1.TripInput) (*v1.Trip, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v1.Trip), args.Error(1)
}

func (m *mockTrips) DeleteTrip(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
