// Package v1 contains the wire types of the trips REST backend.
package v1

// TripInput is the payload for creating a trip. It carries every field of a
// trip except the server-assigned ID.
type TripInput struct {
	// Name is the display title of the trip
	Name string `json:"name" yaml:"name,omitempty"`
	// Description is a short marketing summary
	Description string `json:"description" yaml:"description,omitempty"`
	// EstimatedPrice is the per-person price in dollars
	EstimatedPrice float64 `json:"estimatedPrice" yaml:"estimatedPrice,omitempty"`
	// Duration is the trip length in days
	Duration int `json:"duration" yaml:"duration,omitempty"`
	// Budget is a free-form budget class (e.g. "Mid-range", "Luxury")
	Budget string `json:"budget" yaml:"budget,omitempty"`
	// TravelStyle is a free-form style label (e.g. "Relaxed", "Adventure")
	TravelStyle string `json:"travelStyle" yaml:"travelStyle,omitempty"`
	// Interests summarizes what the trip focuses on
	Interests string `json:"interests" yaml:"interests,omitempty"`
	// GroupType describes who the trip is for (e.g. "Couple", "Family")
	GroupType string `json:"groupType" yaml:"groupType,omitempty"`
	// Country is the destination country
	Country string `json:"country" yaml:"country,omitempty"`
	// ImageURLs lists cover images, first one is the hero image
	ImageURLs []string `json:"imageUrls,omitempty" yaml:"imageUrls,omitempty"`
	// Itinerary is either free text or a JSON encoded list of days
	Itinerary string `json:"itinerary" yaml:"itinerary,omitempty"`
	// BestTimeToVisit lists seasonal recommendations
	BestTimeToVisit []string `json:"bestTimeToVisit" yaml:"bestTimeToVisit,omitempty"`
	// WeatherInfo lists seasonal weather notes
	WeatherInfo []string `json:"weatherInfo" yaml:"weatherInfo,omitempty"`
	// LocationCity is the main city of the trip
	LocationCity string `json:"locationCity" yaml:"locationCity,omitempty"`
	// LocationLatitude is optional
	LocationLatitude *float64 `json:"locationLatitude,omitempty" yaml:"locationLatitude,omitempty"`
	// LocationLongitude is optional
	LocationLongitude *float64 `json:"locationLongitude,omitempty" yaml:"locationLongitude,omitempty"`
	// LocationOpenStreetMap links to the OpenStreetMap relation of the city
	LocationOpenStreetMap string `json:"locationOpenStreetMap,omitempty" yaml:"locationOpenStreetMap,omitempty"`
	// PaymentLink points to an external booking page
	PaymentLink string `json:"paymentLink,omitempty" yaml:"paymentLink,omitempty"`
}

// Trip is a trip as returned by the backend.
type Trip struct {
	// ID is the backend identifier
	ID string `json:"id"`
	TripInput
}

// TripList is a page of trips as returned by the paged listing endpoint.
type TripList struct {
	// Items holds the trips of this page
	Items []Trip `json:"content"`
	// TotalPages is the number of pages for the current size
	TotalPages int `json:"totalPages"`
	// TotalElements is the number of trips across all pages
	TotalElements int `json:"totalElements"`
	// Size is the requested page size
	Size int `json:"size"`
	// Number is the zero-based page index
	Number int `json:"number"`
	First  bool `json:"first"`
	Last   bool `json:"last"`
	Empty  bool `json:"empty"`
}

// PageRequest selects a page of the paged listing endpoint.
type PageRequest struct {
	// Page is the zero-based page index
	Page int
	// Size is the number of trips per page, 20 when zero
	Size int
	// Sort holds sort expressions such as "name,asc"
	Sort []string
}
