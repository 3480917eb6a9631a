package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
)

// ListTrips retrieves every trip
func (c *Client) ListTrips(ctx context.Context) ([]v1.Trip, error) {
	return list(ctx, c, "/trips")
}

// GetTrip retrieves a single trip by ID
func (c *Client) GetTrip(ctx context.Context, id string) (*v1.Trip, error) {
	trip, err := decode[v1.Trip](ctx, c, "/trips/"+url.PathEscape(id), RequestOptions{})
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, &Error{Message: fmt.Sprintf("trip %q: empty response", id), Status: http.StatusNoContent}
	}
	return trip, nil
}

// ListTripsByTravelStyle retrieves the trips of one travel style
func (c *Client) ListTripsByTravelStyle(ctx context.Context, style string) ([]v1.Trip, error) {
	return list(ctx, c, "/trips/travel-style/"+url.PathEscape(style))
}

// ListTripsByCountry retrieves the trips to one country
func (c *Client) ListTripsByCountry(ctx context.Context, country string) ([]v1.Trip, error) {
	return list(ctx, c, "/trips/country/"+url.PathEscape(country))
}

// SearchTrips runs a free-text search over trips
func (c *Client) SearchTrips(ctx context.Context, query string) ([]v1.Trip, error) {
	return list(ctx, c, "/trips/search?query="+url.QueryEscape(query))
}

// ListTripsPaged retrieves one page of trips. A zero size requests 20 trips.
func (c *Client) ListTripsPaged(ctx context.Context, page v1.PageRequest) (*v1.TripList, error) {
	size := page.Size
	if size <= 0 {
		size = 20
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page.Page))
	params.Set("size", strconv.Itoa(size))
	for _, s := range page.Sort {
		params.Add("sort", s)
	}

	result, err := decode[v1.TripList](ctx, c, "/trips/paged?"+params.Encode(), RequestOptions{})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return &v1.TripList{Size: size, Number: page.Page, Empty: true, First: true, Last: true}, nil
	}
	return result, nil
}

// CreateTrip creates a trip and returns it as stored by the backend
func (c *Client) CreateTrip(ctx context.Context, input *v1.TripInput) (*v1.Trip, error) {
	trip, err := decode[v1.Trip](ctx, c, "/trips", RequestOptions{
		Method: http.MethodPost,
		Body:   input,
	})
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, &Error{Message: "create trip: empty response", Status: http.StatusNoContent}
	}
	return trip, nil
}

// UpdateTrip replaces a trip identified by trip.ID
func (c *Client) UpdateTrip(ctx context.Context, trip *v1.Trip) (*v1.Trip, error) {
	updated, err := decode[v1.Trip](ctx, c, "/trips/"+url.PathEscape(trip.ID), RequestOptions{
		Method: http.MethodPut,
		Body:   trip,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return trip, nil
	}
	return updated, nil
}

// DeleteTrip removes a trip. The backend answers 204 No Content.
func (c *Client) DeleteTrip(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/trips/"+url.PathEscape(id), RequestOptions{Method: http.MethodDelete})
	return err
}

// list fetches an endpoint answering with a JSON array of trips
func list(ctx context.Context, c *Client, endpoint string) ([]v1.Trip, error) {
	trips, err := decode[[]v1.Trip](ctx, c, endpoint, RequestOptions{})
	if err != nil {
		return nil, err
	}
	if trips == nil || *trips == nil {
		return []v1.Trip{}, nil
	}
	return *trips, nil
}
