package itinerary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
	"github.com/wrale/wrale-trips/internal/price"
)

// FromAPI converts a backend trip into its view model
func FromAPI(trip *v1.Trip) *Itinerary {
	return &Itinerary{
		ID:              trip.ID,
		Name:            trip.Name,
		Description:     trip.Description,
		EstimatedPrice:  DisplayPrice(trip.EstimatedPrice),
		Duration:        trip.Duration,
		Budget:          trip.Budget,
		TravelStyle:     trip.TravelStyle,
		Interests:       trip.Interests,
		GroupType:       trip.GroupType,
		Country:         trip.Country,
		ImageURLs:       trip.ImageURLs,
		Itinerary:       trip.Itinerary,
		BestTimeToVisit: orEmpty(trip.BestTimeToVisit),
		WeatherInfo:     orEmpty(trip.WeatherInfo),
		Location: Location{
			City:          trip.LocationCity,
			Coordinates:   [2]*float64{trip.LocationLatitude, trip.LocationLongitude},
			OpenStreetMap: trip.LocationOpenStreetMap,
		},
		PaymentLink: trip.PaymentLink,
	}
}

// FromAPIList converts a list of backend trips
func FromAPIList(trips []v1.Trip) []*Itinerary {
	out := make([]*Itinerary, 0, len(trips))
	for i := range trips {
		out = append(out, FromAPI(&trips[i]))
	}
	return out
}

// DisplayPrice renders a backend price for listing, keeping up to three
// fraction digits, e.g. 1200.5 as "$1,200.5".
func DisplayPrice(amount float64) string {
	return "$" + price.USD.Number(decimal.NewFromFloat(amount), 3)
}

// ToCreate converts the view model into a creation payload. The ID is not sent.
func ToCreate(it *Itinerary) (*v1.TripInput, error) {
	amount, err := ParsePrice(it.EstimatedPrice)
	if err != nil {
		return nil, err
	}

	return &v1.TripInput{
		Name:                  it.Name,
		Description:           it.Description,
		EstimatedPrice:        amount,
		Duration:              it.Duration,
		Budget:                it.Budget,
		TravelStyle:           it.TravelStyle,
		Interests:             it.Interests,
		GroupType:             it.GroupType,
		Country:               it.Country,
		ImageURLs:             it.ImageURLs,
		Itinerary:             it.Itinerary,
		BestTimeToVisit:       orEmpty(it.BestTimeToVisit),
		WeatherInfo:           orEmpty(it.WeatherInfo),
		LocationCity:          it.Location.City,
		LocationLatitude:      it.Location.Coordinates[0],
		LocationLongitude:     it.Location.Coordinates[1],
		LocationOpenStreetMap: it.Location.OpenStreetMap,
		PaymentLink:           it.PaymentLink,
	}, nil
}

// ToUpdate converts the view model into a full trip for replacement
func ToUpdate(it *Itinerary) (*v1.Trip, error) {
	input, err := ToCreate(it)
	if err != nil {
		return nil, err
	}
	return &v1.Trip{ID: it.ID, TripInput: *input}, nil
}

// ParsePrice reads a display price such as "$1,200.50" back into a number
func ParsePrice(display string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(display))
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", display)
	}
	return amount, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
