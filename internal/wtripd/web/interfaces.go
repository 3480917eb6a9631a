// Package web serves the server-rendered trip pages, the live price check
// endpoints and the operational routes of wtripd.
package web

import (
	"context"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
)

// TripService is the part of the backend client the pages use. It is
// satisfied by *client.Client.
type TripService interface {
	ListTrips(ctx context.Context) ([]v1.Trip, error)
	GetTrip(ctx context.Context, id string) (*v1.Trip, error)
	ListTripsByTravelStyle(ctx context.Context, style string) ([]v1.Trip, error)
	ListTripsByCountry(ctx context.Context, country string) ([]v1.Trip, error)
	SearchTrips(ctx context.Context, query string) ([]v1.Trip, error)
	ListTripsPaged(ctx context.Context, page v1.PageRequest) (*v1.TripList, error)
	CreateTrip(ctx context.Context, input *v1.TripInput) (*v1.Trip, error)
	DeleteTrip(ctx context.Context, id string) error
}

// ReadinessCheck reports whether a dependency is able to serve
type ReadinessCheck func(ctx context.Context) error
