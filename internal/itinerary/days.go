package itinerary

import (
	"encoding/json"
	"strings"
)

// Days decodes the itinerary text when it holds a JSON list of days. The
// second result is false for free text, which is rendered as is.
func (i *Itinerary) Days() ([]Day, bool) {
	text := strings.TrimSpace(i.Itinerary)
	if !strings.HasPrefix(text, "[") {
		return nil, false
	}

	var days []Day
	if err := json.Unmarshal([]byte(text), &days); err != nil || len(days) == 0 {
		return nil, false
	}
	return days, true
}
