package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-trips/internal/price"
	"github.com/wrale/wrale-trips/internal/wtripd/metrics"
	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit"
)

// maxFormBytes bounds the size of a submitted creation form
const maxFormBytes = 1 << 20

// Handler serves the web front-end
type Handler struct {
	trips     TripService
	prices    *price.Validator
	lists     *listLoader
	limiter   *ratelimit.Service
	metrics   *metrics.Metrics
	readiness map[string]ReadinessCheck
	pages     *pages
	logger    zerolog.Logger
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithRateLimiter throttles trip creation with the given service. The
// ratelimit.LimitCreateTrip limit must be registered on it.
func WithRateLimiter(s *ratelimit.Service) HandlerOption {
	return func(h *Handler) {
		h.limiter = s
	}
}

// WithMetrics records request, backend and validation metrics and serves
// them on the metrics route
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithTripListTTL reuses loaded trip lists for ttl. Zero disables caching.
func WithTripListTTL(ttl time.Duration) HandlerOption {
	return func(h *Handler) {
		h.lists.ttl = ttl
	}
}

// WithReadinessCheck adds a named check to the readiness route
func WithReadinessCheck(name string, check ReadinessCheck) HandlerOption {
	return func(h *Handler) {
		h.readiness[name] = check
	}
}

// NewHandler creates the web handler. Prices are validated and rendered by
// prices.
func NewHandler(trips TripService, prices *price.Validator, logger zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		trips:     trips,
		prices:    prices,
		lists:     newListLoader(trips),
		readiness: make(map[string]ReadinessCheck),
		pages:     mustLoadPages(prices.Formatter()),
		logger:    logger.With().Str("component", "web").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics != nil {
		h.lists.observe = h.metrics.ObserveTripListLoad
	}
	return h
}

// wantsJSON reports whether the client prefers JSON over HTML
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}

// respondError answers err as an error page, or as JSON when the client asks
// for it. Errors that are not HTTPErrors become 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	page := pageFor(err)
	if page.Status >= http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("requestId", middleware.GetReqID(r.Context())).
			Int("status", page.Status).
			Msg("request failed")
	}

	if wantsJSON(r) {
		if pe, ok := err.(*PageError); ok && pe.Title != "" {
			h.respondJSON(w, page.Status, page)
			return
		}
		msg := "internal server error"
		if he, ok := err.(HTTPError); ok {
			msg = he.Error()
		}
		h.respondJSON(w, page.Status, map[string]string{"error": msg})
		return
	}

	h.render(w, r, page.Status, "error", page)
}

// render executes a page template into a buffer first so a failing template
// never leaves a half-written page behind
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages.execute(&buf, name, data); err != nil {
		h.logger.Error().
			Err(err).
			Str("requestId", middleware.GetReqID(r.Context())).
			Str("page", name).
			Msg("failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug().Err(err).Str("page", name).Msg("failed to write page")
	}
}

func (h *Handler) validatePrice(input string) price.ValidationResult {
	result := h.prices.Validate(input)
	if h.metrics != nil {
		h.metrics.ObservePriceValidation(result.IsValid)
	}
	return result
}
