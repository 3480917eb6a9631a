package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveHTTP("/travel/{tripId}", http.MethodGet, 200, 20*time.Millisecond)
	m.ObserveHTTP("/travel/{tripId}", http.MethodGet, 200, 30*time.Millisecond)
	m.ObserveHTTP("", http.MethodGet, 404, time.Millisecond)
	m.ObserveBackend(http.MethodGet, "/trips/1", 0, time.Second)
	m.ObservePriceValidation(true)
	m.ObservePriceValidation(false)
	m.ObservePriceValidation(false)
	m.ObserveTripListLoad("hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/travel/{tripId}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("GET", "0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PriceValidationsTotal.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TripListCacheTotal.WithLabelValues("hit")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObservePriceValidation(true)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `wtripd_price_validations_total{outcome="valid"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewIsolatedRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
