package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
	"github.com/wrale/wrale-trips/internal/wtripctl/config"
	"github.com/wrale/wrale-trips/internal/wtripctl/util"
)

type request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// fakeBackend answers every request with the reply registered for its
// method and path, and records what it received
type fakeBackend struct {
	mu       sync.Mutex
	replies  map[string]func(body []byte) (int, string)
	requests []request
}

func newFakeBackend(t *testing.T) (*fakeBackend, string) {
	t.Helper()
	b := &fakeBackend{replies: make(map[string]func([]byte) (int, string))}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		b.requests = append(b.requests, request{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery, Body: body})
		reply, ok := b.replies[r.Method+" "+r.URL.EscapedPath()]
		status, out := http.StatusNotFound, `{"message":"no route"}`
		if ok {
			status, out = reply(body)
		}
		b.mu.Unlock()

		w.WriteHeader(status)
		w.Write([]byte(out))
	}))
	t.Cleanup(srv.Close)
	return b, srv.URL + "/api"
}

func (b *fakeBackend) on(method, path string, status int, body string) {
	b.handle(method, path, func([]byte) (int, string) { return status, body })
}

func (b *fakeBackend) handle(method, path string, fn func(body []byte) (int, string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[method+" "+path] = fn
}

func (b *fakeBackend) received() []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]request(nil), b.requests...)
}

// run executes wtripctl with an isolated config file
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(util.EnvAPIURL, "")
	t.Setenv(util.EnvAuthToken, "")
	return runWithConfig(t, args...)
}

func runWithConfig(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const tokyo = `{"id":"3","name":"Tokyo Tech Adventure","estimatedPrice":1800,"duration":6,"country":"Japan","travelStyle":"City Exploration","locationCity":"Tokyo",
"itinerary":"[{\"day\":1,\"location\":\"Tokyo\",\"activities\":[{\"time\":\"Morning\",\"description\":\"Arrive at Haneda Airport\"}]}]"}`

const bali = `{"id":"1","name":"Tropical Paradise in Bali","estimatedPrice":1200.5,"duration":7,"country":"Indonesia","travelStyle":"Relaxed"}`

func TestTripList(t *testing.T) {
	b, server := newFakeBackend(t)
	b.on(http.MethodGet, "/api/trips", 200, "["+bali+","+tokyo+"]")

	out, err := run(t, "--server", server, "trip", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Tropical Paradise in Bali")
	assert.Contains(t, out, "$1,200.5")
	assert.Contains(t, out, "$1,800")

	out, err = run(t, "--server", server, "trip", "list", "-o", "json")
	require.NoError(t, err)
	var trips []v1.Trip
	require.NoError(t, json.Unmarshal([]byte(out), &trips))
	assert.Len(t, trips, 2)
}

func TestTripListFilters(t *testing.T) {
	b, server := newFakeBackend(t)
	b.on(http.MethodGet, "/api/trips/travel-style/City%20Exploration", 200, "["+tokyo+"]")
	b.on(http.MethodGet, "/api/trips/search", 200, "[]")

	_, err := run(t, "--server", server, "trip", "list", "--style", "City Exploration")
	require.NoError(t, err)

	_, err = run(t, "--server", server, "trip", "list", "-q", "beach", "--style", "ignored")
	require.NoError(t, err)

	reqs := b.received()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/trips/travel-style/City%20Exploration", reqs[0].Path)
	assert.Equal(t, "/api/trips/search", reqs[1].Path)
	assert.Equal(t, "query=beach", reqs[1].Query)
}

func TestTripListPaged(t *testing.T) {
	b, server := newFakeBackend(t)
	b.on(http.MethodGet, "/api/trips/paged", 200,
		`{"content":[`+bali+`],"totalPages":3,"totalElements":5,"size":2,"number":1}`)

	out, err := run(t, "--server", server, "trip", "list", "--page", "1", "--size", "2", "--sort", "name,asc")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 2 of 3 (5 trips)")

	reqs := b.received()
	require.Len(t, reqs, 1)
	assert.Equal(t, "page=1&size=2&sort=name%2Casc", reqs[0].Query)
}

func TestTripGet(t *testing.T) {
	b, server := newFakeBackend(t)
	b.on(http.MethodGet, "/api/trips/3", 200, tokyo)
	b.on(http.MethodGet, "/api/trips/9", 404, `{"message":"Trip not found with id: 9"}`)

	out, err := run(t, "--server", server, "trip", "get", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Tokyo Tech Adventure")
	assert.Contains(t, out, "6 days")
	assert.Contains(t, out, "Day 1 - Tokyo")
	assert.Contains(t, out, "Arrive at Haneda Airport")

	_, err = run(t, "--server", server, "trip", "get", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Trip not found with id: 9")
}

func TestTripCreate(t *testing.T) {
	b, server := newFakeBackend(t)
	b.handle(http.MethodPost, "/api/trips", func(body []byte) (int, string) {
		var in map[string]interface{}
		_ = json.Unmarshal(body, &in)
		in["id"] = "11"
		out, _ := json.Marshal(in)
		return http.StatusCreated, string(out)
	})

	out, err := run(t, "--server", server, "trip", "create",
		"--name", "Lisbon Weekend",
		"--price", "$1,450.50",
		"--duration", "3",
		"--country", "Portugal",
		"--city", "Lisbon",
		"--latitude", "38.72",
		"--image", "https://example.com/a.jpg",
		"--image", "https://example.com/b.jpg",
	)
	require.NoError(t, err)
	assert.Contains(t, out, `Trip "Lisbon Weekend" created with ID 11`)

	reqs := b.received()
	require.Len(t, reqs, 1)
	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, 1450.5, sent["estimatedPrice"])
	assert.Equal(t, float64(3), sent["duration"])
	assert.Equal(t, 38.72, sent["locationLatitude"])
	assert.NotContains(t, sent, "locationLongitude")
	assert.NotContains(t, sent, "id")
	assert.Equal(t, []interface{}{"https://example.com/a.jpg", "https://example.com/b.jpg"}, sent["imageUrls"])
}

func TestTripCreateRejectsPriceLocally(t *testing.T) {
	b, server := newFakeBackend(t)

	_, err := run(t, "--server", server, "trip", "create", "--name", "x", "--price", "12.345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Price must have at most 2 decimal places")

	_, err = run(t, "--server", server, "trip", "create", "--name", "x")
	require.Error(t, err)
	assert.Equal(t, "--price is required unless --file is given", err.Error())

	assert.Empty(t, b.received())
}

func TestTripCreateFromFile(t *testing.T) {
	b, server := newFakeBackend(t)
	b.on(http.MethodPost, "/api/trips", http.StatusCreated, `{"id":"12","name":"Lisbon Weekend"}`)

	path := filepath.Join(t.TempDir(), "trip.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Lisbon Weekend
estimatedPrice: 450
duration: 3
bestTimeToVisit:
  - Spring
`), 0o600))

	_, err := run(t, "--server", server, "trip", "create", "-f", path, "--duration", "4")
	require.NoError(t, err)

	reqs := b.received()
	require.Len(t, reqs, 1)
	var sent v1.TripInput
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, "Lisbon Weekend", sent.Name)
	assert.Equal(t, 450.0, sent.EstimatedPrice)
	assert.Equal(t, 4, sent.Duration)
	assert.Equal(t, []string{"Spring"}, sent.BestTimeToVisit)
}

func TestTripUpdateChangesOnlyGivenFields(t *testing.T) {
	b, server := newFakeBackend(t)
	b.on(http.MethodGet, "/api/trips/1", 200, bali)
	b.handle(http.MethodPut, "/api/trips/1", func(body []byte) (int, string) {
		return http.StatusOK, string(body)
	})

	out, err := run(t, "--server", server, "trip", "update", "1", "--price", "1350")
	require.NoError(t, err)
	assert.Contains(t, out, `Trip "1" updated`)

	reqs := b.received()
	require.Len(t, reqs, 2)
	var sent v1.Trip
	require.NoError(t, json.Unmarshal(reqs[1].Body, &sent))
	assert.Equal(t, "1", sent.ID)
	assert.Equal(t, "Tropical Paradise in Bali", sent.Name)
	assert.Equal(t, 1350.0, sent.EstimatedPrice)
	assert.Equal(t, 7, sent.Duration)

	_, err = run(t, "--server", server, "trip", "update", "1")
	require.Error(t, err)
}

func TestTripDelete(t *testing.T) {
	b, server := newFakeBackend(t)
	b.on(http.MethodDelete, "/api/trips/1", http.StatusNoContent, "")

	out, err := run(t, "--server", server, "trip", "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Trip \"1\" deleted\n", out)

	_, err = run(t, "--server", server, "trip", "rm", "2")
	require.Error(t, err)
}

func TestTripSeedPrintCurl(t *testing.T) {
	b, server := newFakeBackend(t)

	out, err := run(t, "--server", server, "trip", "seed", "--print-curl")
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, "curl -X POST "+server+"/trips"))
	assert.Contains(t, out, "# Trip 3: Tokyo Tech Adventure")
	assert.Empty(t, b.received())
}

func TestTripSeed(t *testing.T) {
	b, server := newFakeBackend(t)
	var n int
	b.handle(http.MethodPost, "/api/trips", func(body []byte) (int, string) {
		n++
		if n == 2 {
			return http.StatusBadRequest, `{"message":"duplicate trip"}`
		}
		var in v1.TripInput
		_ = json.Unmarshal(body, &in)
		out, _ := json.Marshal(v1.Trip{ID: "t", TripInput: in})
		return http.StatusCreated, string(out)
	})

	out, err := run(t, "--server", server, "trip", "seed")
	require.Error(t, err)
	assert.Contains(t, out, "Created: Tropical Paradise in Bali")
	assert.Contains(t, out, "Failed:  Paris Romance Getaway (duplicate trip)")
	assert.Contains(t, out, "Seeded 3 of 4 trips")

	reqs := b.received()
	require.Len(t, reqs, 4)
	var seeded v1.TripInput
	require.NoError(t, json.Unmarshal(reqs[2].Body, &seeded))
	assert.True(t, strings.HasPrefix(seeded.Itinerary, "["))
	require.NotNil(t, seeded.LocationLatitude)
	assert.Equal(t, 35.6762, *seeded.LocationLatitude)
}

func TestLoadSeeds(t *testing.T) {
	trips, err := loadSeeds(defaultSeeds)
	require.NoError(t, err)
	require.Len(t, trips, 4)
	for _, trip := range trips {
		assert.NotEmpty(t, trip.Name)
		assert.Positive(t, trip.EstimatedPrice)
	}

	_, err = loadSeeds([]byte("trips: []"))
	assert.EqualError(t, err, "seed data holds no trips")
}

func TestPriceValidate(t *testing.T) {
	out, err := run(t, "price", "validate", "$1,200.5")
	require.NoError(t, err)
	assert.Equal(t, "valid: $1,200.5\n", out)

	_, err = run(t, "price", "validate", "0")
	require.Error(t, err)
	assert.Equal(t, "invalid price: Price must be greater than $0", err.Error())

	out, err = run(t, "price", "validate", "0", "--allow-zero", "--min", "0")
	require.NoError(t, err)
	assert.Equal(t, "valid: $0\n", out)

	out, err = run(t, "price", "validate", "12.5", "--decimal-places", "0", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, out, `"isValid": false`)
	assert.Contains(t, out, "Price must have at most 0 decimal places")
}

func TestPriceFormat(t *testing.T) {
	out, err := run(t, "price", "format", "$1234.567")
	require.NoError(t, err)
	assert.Contains(t, out, "1,234.57")
	assert.Contains(t, out, "1234.567")

	out, err = run(t, "price", "format", "1234.5", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "display: 1,234.5")
	assert.Contains(t, out, "backend: \"1234.5\"")
	assert.Contains(t, out, "currency: $1,234.5")
}

func TestConfigContexts(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(util.EnvAPIURL, "")

	_, err := runWithConfig(t, "config", "set-context", "local", "--server", "http://localhost:8081/api")
	require.NoError(t, err)
	_, err = runWithConfig(t, "config", "set-context", "staging", "--server", "https://staging/api", "--token", "secret-token")
	require.NoError(t, err)

	out, err := runWithConfig(t, "config", "get-context")
	require.NoError(t, err)
	assert.Regexp(t, `\*\s+local\s+http://localhost:8081/api`, out)

	out, err = runWithConfig(t, "config", "use-context", "staging")
	require.NoError(t, err)
	assert.Equal(t, "Switched to context \"staging\"\n", out)

	out, err = runWithConfig(t, "config", "get-context", "staging")
	require.NoError(t, err)
	assert.Contains(t, out, "secr****")
	assert.NotContains(t, out, "secret-token")

	out, err = runWithConfig(t, "config", "view", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "current-context: staging")
	assert.NotContains(t, out, "secret-token")

	// changing the server keeps the stored token
	_, err = runWithConfig(t, "config", "set-context", "staging", "--server", "https://staging2/api")
	require.NoError(t, err)
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Contexts["staging"].Token)

	_, err = runWithConfig(t, "config", "delete-context", "staging")
	require.NoError(t, err)
	_, err = runWithConfig(t, "config", "use-context", "staging")
	require.Error(t, err)
}

func TestCurrentContextSelectsBackend(t *testing.T) {
	b, server := newFakeBackend(t)
	b.on(http.MethodGet, "/api/trips", 200, "[]")

	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(util.EnvAPIURL, "")
	t.Setenv(util.EnvAuthToken, "")

	_, err := runWithConfig(t, "config", "set-context", "test", "--server", server)
	require.NoError(t, err)
	_, err = runWithConfig(t, "trip", "list")
	require.NoError(t, err)
	assert.Len(t, b.received(), 1)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wtripctl version dev\n", out)

	out, err = run(t, "version", "--debug")
	require.NoError(t, err)
	assert.Contains(t, out, "commit: none")
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "version", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)
}
