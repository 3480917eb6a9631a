package itinerary

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/wrale/wrale-trips/internal/price"
)

// ParseForm builds an itinerary from the fields of the creation form. The
// price is stripped to its numeric content by prices, or by the en-US
// validator when prices is nil; it is expected to have been validated
// already. Coordinates that do not parse, or are zero, stay unset.
func ParseForm(form url.Values, prices *price.Validator) *Itinerary {
	backendPrice := price.ParseToBackendFormat
	if prices != nil {
		backendPrice = prices.ParseToBackendFormat
	}
	duration, _ := strconv.Atoi(strings.TrimSpace(form.Get("duration")))

	return &Itinerary{
		Name:           form.Get("name"),
		Description:    form.Get("description"),
		EstimatedPrice: backendPrice(form.Get("estimatedPrice")),
		Duration:       duration,
		Budget:         form.Get("budget"),
		TravelStyle:    form.Get("travelStyle"),
		Interests:      form.Get("interests"),
		GroupType:      form.Get("groupType"),
		Country:        form.Get("country"),
		ImageURLs:      splitLines(form.Get("imageUrls")),
		Itinerary:      form.Get("itinerary"),
		Location: Location{
			City:          form.Get("city"),
			Coordinates:   [2]*float64{coordinate(form.Get("latitude")), coordinate(form.Get("longitude"))},
			OpenStreetMap: form.Get("openStreetMap"),
		},
		PaymentLink: form.Get("paymentLink"),
	}
}

// splitLines returns the non-blank lines of s, nil when there are none
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func coordinate(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}
