// Package itinerary holds the view model the pages render and the mappers
// between it and the backend wire types.
package itinerary

// DefaultHeroImage is shown when a trip has no images
const DefaultHeroImage = "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=800"

// Location is where a trip takes place
type Location struct {
	City string `json:"city"`
	// Coordinates holds latitude and longitude, either may be unset
	Coordinates   [2]*float64 `json:"coordinates"`
	OpenStreetMap string      `json:"openStreetMap,omitempty"`
}

// Itinerary is a trip as shown to users. EstimatedPrice is the display form,
// e.g. "$1,200".
type Itinerary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	EstimatedPrice  string   `json:"estimatedPrice"`
	Duration        int      `json:"duration"`
	Budget          string   `json:"budget"`
	TravelStyle     string   `json:"travelStyle"`
	Interests       string   `json:"interests"`
	GroupType       string   `json:"groupType"`
	Country         string   `json:"country"`
	ImageURLs       []string `json:"imageUrls"`
	Itinerary       string   `json:"itinerary"`
	BestTimeToVisit []string `json:"bestTimeToVisit"`
	WeatherInfo     []string `json:"weatherInfo"`
	Location        Location `json:"location"`
	PaymentLink     string   `json:"paymentLink,omitempty"`
}

// HeroImage returns the first image, or DefaultHeroImage
func (i *Itinerary) HeroImage() string {
	if len(i.ImageURLs) > 0 && i.ImageURLs[0] != "" {
		return i.ImageURLs[0]
	}
	return DefaultHeroImage
}

// Gallery returns up to two images following the hero image
func (i *Itinerary) Gallery() []string {
	if len(i.ImageURLs) <= 1 {
		return nil
	}
	end := len(i.ImageURLs)
	if end > 3 {
		end = 3
	}
	return i.ImageURLs[1:end]
}

// Activity is one entry of a structured itinerary day
type Activity struct {
	Time        string `json:"time"`
	Description string `json:"description"`
}

// Day is one day of a structured itinerary
type Day struct {
	Day        int        `json:"day"`
	Location   string     `json:"location"`
	Activities []Activity `json:"activities"`
}
