package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit"
)

// DefaultMetricsPath is where metrics are served unless configured otherwise
const DefaultMetricsPath = "/metrics"

// Router returns the complete route tree. Metrics are served on metricsPath
// when the handler has metrics.
func (h *Handler) Router(metricsPath string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestIDHeaderMiddleware)
	r.Use(logMiddleware(h.logger))
	if h.metrics != nil {
		r.Use(h.metricsMiddleware)
	}
	r.Use(h.recoverMiddleware)

	// Operational endpoints
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	if h.metrics != nil {
		if metricsPath == "" {
			metricsPath = DefaultMetricsPath
		}
		r.Method(http.MethodGet, metricsPath, h.metrics.Handler())
	}

	// Live price feedback
	r.Get("/api/price/validate", h.handleValidatePrice)
	r.Get("/ws/price", h.handlePriceSocket)

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/", h.handleIndex)
		r.Get("/travel-list", h.handleTravelList)
		r.Get("/travel/{tripId}", h.handleTravelDetail)
		r.Post("/travel/{tripId}/delete", h.handleDeleteTravel)
		r.Get("/create-travel", h.handleCreateForm)

		r.Group(func(r chi.Router) {
			if h.limiter != nil {
				r.Use(ratelimit.Middleware(h.limiter, h.logger, ratelimit.Options{
					LimitType: ratelimit.LimitCreateTrip,
					OnLimited: h.handleLimited,
				}))
			}
			r.Post("/create-travel", h.handleCreateTravel)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.respondError(w, r, ErrNotFound("not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.respondError(w, r, &PageError{
			Status:  http.StatusMethodNotAllowed,
			Message: http.StatusText(http.StatusMethodNotAllowed),
		})
	})

	return r
}
