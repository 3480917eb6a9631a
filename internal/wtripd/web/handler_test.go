package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
	"github.com/wrale/wrale-trips/internal/client"
	"github.com/wrale/wrale-trips/internal/price"
	"github.com/wrale/wrale-trips/internal/wtripd/metrics"
	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit"
	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit/memory"
)

var bali = v1.Trip{
	ID: "7",
	TripInput: v1.TripInput{
		Name:           "Bali Retreat",
		Description:    "Temples and rice terraces",
		EstimatedPrice: 1200.5,
		Duration:       7,
		Country:        "Indonesia",
		TravelStyle:    "Relaxation",
		Itinerary:      `[{"day":1,"location":"Ubud","activities":[{"time":"09:00","description":"Monkey forest"}]}]`,
	},
}

var errUnreachable = &client.Error{Message: client.MsgUnreachable, Status: 0}

func newTestRouter(t *testing.T, trips TripService, opts ...HandlerOption) http.Handler {
	t.Helper()
	h := NewHandler(trips, price.NewValidator(price.USD), zerolog.Nop(), opts...)
	return h.Router("")
}

func serve(h http.Handler, method, target string, body url.Values, accept string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexRedirects(t *testing.T) {
	rec := serve(newTestRouter(t, &mockTrips{}), http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/travel-list", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestTravelList(t *testing.T) {
	trips := &mockTrips{}
	trips.On("ListTrips", mock.Anything).Return([]v1.Trip{bali}, nil)
	r := newTestRouter(t, trips)

	rec := serve(r, http.MethodGet, "/travel-list", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Bali Retreat")
	assert.Contains(t, rec.Body.String(), "$1,200.5")
	assert.Contains(t, rec.Body.String(), `href="/travel/7"`)

	rec = serve(r, http.MethodGet, "/travel-list", nil, "application/json")
	assert.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "$1,200.5", items[0]["estimatedPrice"])

	trips.AssertExpectations(t)
}

func TestTravelListFilters(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		method string
		arg    interface{}
		result interface{}
	}{
		{"search", "?q=beach&style=Adventure", "SearchTrips", "beach", []v1.Trip{bali}},
		{"style", "?style=Relaxation", "ListTripsByTravelStyle", "Relaxation", []v1.Trip{bali}},
		{"country", "?country=Indonesia", "ListTripsByCountry", "Indonesia", []v1.Trip{bali}},
		{
			"paged", "?page=1&size=5&sort=name,asc", "ListTripsPaged",
			v1.PageRequest{Page: 1, Size: 5, Sort: []string{"name,asc"}},
			&v1.TripList{Items: []v1.Trip{bali}, TotalPages: 3, Number: 1, Size: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trips := &mockTrips{}
			trips.On(tt.method, mock.Anything, tt.arg).Return(tt.result, nil)

			rec := serve(newTestRouter(t, trips), http.MethodGet, "/travel-list"+tt.query, nil, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Bali Retreat")
			trips.AssertExpectations(t)
		})
	}
}

func TestTravelListPagingLinks(t *testing.T) {
	trips := &mockTrips{}
	trips.On("ListTripsPaged", mock.Anything, mock.Anything).
		Return(&v1.TripList{Items: []v1.Trip{bali}, TotalPages: 3, Number: 1, Size: 5}, nil)

	rec := serve(newTestRouter(t, trips), http.MethodGet, "/travel-list?page=1&size=5", nil, "")
	assert.Contains(t, rec.Body.String(), "Page 2 of 3")
	assert.Contains(t, rec.Body.String(), "page=0&size=5")
	assert.Contains(t, rec.Body.String(), "page=2&size=5")
}

func TestTravelListInvalidPage(t *testing.T) {
	rec := serve(newTestRouter(t, &mockTrips{}), http.MethodGet, "/travel-list?page=abc", nil, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid page: abc"}`, rec.Body.String())
}

func TestTravelListBackendDown(t *testing.T) {
	trips := &mockTrips{}
	trips.On("ListTrips", mock.Anything).Return(nil, errUnreachable)
	r := newTestRouter(t, trips)

	rec := serve(r, http.MethodGet, "/travel-list", nil, "application/json")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Connection Error", body["title"])
	assert.Equal(t, "Unable to connect to the travel server. Please check if the backend service is running.", body["message"])
	assert.Equal(t, "The server might be down or there could be a network issue.", body["details"])
	assert.Equal(t, "Please start the backend server (port 8081) and refresh the page.", body["action"])
	assert.NotEmpty(t, body["timestamp"])

	rec = serve(r, http.MethodGet, "/travel-list", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Connection Error")
}

func TestTravelDetail(t *testing.T) {
	trips := &mockTrips{}
	trips.On("GetTrip", mock.Anything, "7").Return(&bali, nil)
	r := newTestRouter(t, trips)

	rec := serve(r, http.MethodGet, "/travel/7", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bali Retreat")
	assert.Contains(t, rec.Body.String(), "Day 1")
	assert.Contains(t, rec.Body.String(), "Monkey forest")

	rec = serve(r, http.MethodGet, "/travel/7", nil, "application/json")
	var it map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &it))
	assert.Equal(t, "7", it["id"])
}

func TestTravelDetailFreeTextItinerary(t *testing.T) {
	trip := bali
	trip.Itinerary = "Day 1: arrive <late>"
	trips := &mockTrips{}
	trips.On("GetTrip", mock.Anything, "7").Return(&trip, nil)

	rec := serve(newTestRouter(t, trips), http.MethodGet, "/travel/7", nil, "")
	assert.Contains(t, rec.Body.String(), "Day 1: arrive &lt;late&gt;")
}

func TestTravelDetailNotFound(t *testing.T) {
	trips := &mockTrips{}
	trips.On("GetTrip", mock.Anything, "404").Return(nil, &client.Error{Message: "Trip not found with id: 404", Status: 404})
	trips.On("GetTrip", mock.Anything, "down").Return(nil, errUnreachable)
	r := newTestRouter(t, trips)

	rec := serve(r, http.MethodGet, "/travel/404", nil, "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Trip not found"}`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/travel/down", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Not Found")
}

func createForm() url.Values {
	return url.Values{
		"name":           {"Bali Retreat"},
		"description":    {"Temples and rice terraces"},
		"country":        {"Indonesia"},
		"city":           {"Ubud"},
		"duration":       {"7"},
		"estimatedPrice": {"$1,200.50"},
		"imageUrls":      {"https://img/1.jpg\n\nhttps://img/2.jpg"},
		"latitude":       {"-8.5"},
		"longitude":      {"abc"},
	}
}

func TestCreateTravelInvalidPrice(t *testing.T) {
	trips := &mockTrips{}
	r := newTestRouter(t, trips)

	form := createForm()
	form.Set("estimatedPrice", "12.345")
	rec := serve(r, http.MethodPost, "/create-travel", form, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Price must have at most 2 decimal places")
	assert.Contains(t, rec.Body.String(), `value="Bali Retreat"`)

	form.Set("estimatedPrice", "")
	rec = serve(r, http.MethodPost, "/create-travel", form, "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Price is required"}`, rec.Body.String())

	trips.AssertNotCalled(t, "CreateTrip", mock.Anything, mock.Anything)
}

func TestCreateTravel(t *testing.T) {
	trips := &mockTrips{}
	trips.On("CreateTrip", mock.Anything, mock.MatchedBy(func(in *v1.TripInput) bool {
		return in.Name == "Bali Retreat" &&
			in.EstimatedPrice == 1200.5 &&
			in.Duration == 7 &&
			len(in.ImageURLs) == 2 &&
			in.LocationCity == "Ubud" &&
			in.LocationLatitude != nil && *in.LocationLatitude == -8.5 &&
			in.LocationLongitude == nil
	})).Return(&v1.Trip{ID: "9", TripInput: v1.TripInput{Name: "Bali Retreat"}}, nil)
	r := newTestRouter(t, trips)

	rec := serve(r, http.MethodPost, "/create-travel", createForm(), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/travel/9", rec.Header().Get("Location"))

	rec = serve(r, http.MethodPost, "/create-travel", createForm(), "application/json")
	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "9", body["tripId"])

	trips.AssertExpectations(t)
}

func TestCreateTravelBackendErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation",
			err:        &client.Error{Message: "HTTP 422: Unprocessable Entity. name: required", Status: 422},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "name: required",
		},
		{
			name:       "unreachable",
			err:        errUnreachable,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   client.MsgUnreachable,
		},
		{
			name:       "server error",
			err:        &client.Error{Message: "boom", Status: 500},
			wantStatus: http.StatusBadGateway,
			wantBody:   "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trips := &mockTrips{}
			trips.On("CreateTrip", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(newTestRouter(t, trips), http.MethodPost, "/create-travel", createForm(), "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestCreateTravelInvalidatesListCache(t *testing.T) {
	trips := &mockTrips{}
	trips.On("ListTrips", mock.Anything).Return([]v1.Trip{bali}, nil)
	trips.On("CreateTrip", mock.Anything, mock.Anything).Return(&v1.Trip{ID: "9"}, nil)
	r := newTestRouter(t, trips, WithTripListTTL(time.Hour))

	serve(r, http.MethodGet, "/travel-list", nil, "")
	serve(r, http.MethodGet, "/travel-list", nil, "")
	trips.AssertNumberOfCalls(t, "ListTrips", 1)

	serve(r, http.MethodPost, "/create-travel", createForm(), "")
	serve(r, http.MethodGet, "/travel-list", nil, "")
	trips.AssertNumberOfCalls(t, "ListTrips", 2)
}

func TestCreateTravelRateLimited(t *testing.T) {
	limiter := ratelimit.NewService(memory.NewStore(), zerolog.Nop())
	require.NoError(t, limiter.RegisterLimit(ratelimit.LimitCreateTrip, ratelimit.Limit{Rate: 1, Period: time.Hour}))

	trips := &mockTrips{}
	trips.On("CreateTrip", mock.Anything, mock.Anything).Return(&v1.Trip{ID: "9"}, nil)
	r := newTestRouter(t, trips, WithRateLimiter(limiter))

	rec := serve(r, http.MethodPost, "/create-travel", createForm(), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serve(r, http.MethodPost, "/create-travel", createForm(), "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many trips submitted")
	assert.Contains(t, rec.Body.String(), `value="Bali Retreat"`)

	trips.AssertNumberOfCalls(t, "CreateTrip", 1)

	// the form itself is not limited
	rec = serve(r, http.MethodGet, "/create-travel", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteTravel(t *testing.T) {
	trips := &mockTrips{}
	trips.On("DeleteTrip", mock.Anything, "7").Return(nil)
	trips.On("DeleteTrip", mock.Anything, "8").Return(&client.Error{Message: "not found", Status: 404})
	trips.On("DeleteTrip", mock.Anything, "9").Return(errUnreachable)
	r := newTestRouter(t, trips)

	rec := serve(r, http.MethodPost, "/travel/7/delete", url.Values{}, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/travel-list", rec.Header().Get("Location"))

	rec = serve(r, http.MethodPost, "/travel/8/delete", url.Values{}, "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(r, http.MethodPost, "/travel/9/delete", url.Values{}, "application/json")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateForm(t *testing.T) {
	rec := serve(newTestRouter(t, &mockTrips{}), http.MethodGet, "/create-travel", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="estimatedPrice"`)
	assert.Contains(t, rec.Body.String(), `placeholder="$1,200"`)
}

func TestHealthAndReadiness(t *testing.T) {
	r := newTestRouter(t, &mockTrips{},
		WithReadinessCheck("backend", func(ctx context.Context) error { return nil }),
		WithReadinessCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") }),
	)

	rec := serve(r, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(r, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"backend":"ok","redis":"connection refused"}}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New()
	trips := &mockTrips{}
	trips.On("GetTrip", mock.Anything, "7").Return(&bali, nil)
	r := newTestRouter(t, trips, WithMetrics(m))

	serve(r, http.MethodGet, "/travel/7", nil, "")
	serve(r, http.MethodGet, "/api/price/validate?value=abc", nil, "")

	rec := serve(r, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wtripd_http_requests_total{method="GET",route="/travel/{tripId}",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `wtripd_price_validations_total{outcome="invalid"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t, &mockTrips{})

	rec := serve(r, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Not Found")

	rec = serve(r, http.MethodDelete, "/travel-list", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error 405")
}
