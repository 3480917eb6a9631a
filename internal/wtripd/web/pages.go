package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/wrale/wrale-trips/api/types/v1"
	"github.com/wrale/wrale-trips/internal/client"
	"github.com/wrale/wrale-trips/internal/itinerary"
)

type listView struct {
	Filter ListFilter
	Trips  []*itinerary.Itinerary
	Paging *v1.TripList
}

type detailView struct {
	Trip *itinerary.Itinerary
	Days []itinerary.Day
}

type formView struct {
	Error  string
	Values url.Values
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/travel-list", http.StatusFound)
}

func (h *Handler) handleTravelList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	page, err := h.lists.Load(r.Context(), filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("requestId", middleware.GetReqID(r.Context())).
			Str("filter", filter.key()).
			Msg("failed to load trips")
		h.respondError(w, r, ErrUnavailable())
		return
	}

	view := listView{
		Filter: filter,
		Trips:  itinerary.FromAPIList(page.Trips),
		Paging: page.Paging,
	}
	if wantsJSON(r) {
		h.respondJSON(w, http.StatusOK, view.Trips)
		return
	}
	h.render(w, r, http.StatusOK, "list", view)
}

func (h *Handler) handleTravelDetail(w http.ResponseWriter, r *http.Request) {
	tripID := strings.TrimSpace(chi.URLParam(r, "tripId"))
	if tripID == "" {
		h.respondError(w, r, ErrInvalidRequest("Trip ID is required"))
		return
	}

	trip, err := h.trips.GetTrip(r.Context(), tripID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("requestId", middleware.GetReqID(r.Context())).
			Str("tripId", tripID).
			Int("backendStatus", client.StatusOf(err)).
			Msg("failed to load trip")
		h.respondError(w, r, ErrNotFound("Trip not found"))
		return
	}

	it := itinerary.FromAPI(trip)
	if wantsJSON(r) {
		h.respondJSON(w, http.StatusOK, it)
		return
	}
	days, _ := it.Days()
	h.render(w, r, http.StatusOK, "detail", detailView{Trip: it, Days: days})
}

func (h *Handler) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "create", formView{Values: url.Values{}})
}

// handleCreateTravel validates the price before anything else, then maps the
// form and creates the trip. Failures re-render the form with the reason.
func (h *Handler) handleCreateTravel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.respondError(w, r, ErrInvalidRequest("invalid form submission"))
		return
	}
	form := r.PostForm

	if result := h.validatePrice(form.Get("estimatedPrice")); !result.IsValid {
		h.formError(w, r, http.StatusUnprocessableEntity, form, result.Error)
		return
	}

	input, err := itinerary.ToCreate(itinerary.ParseForm(form, h.prices))
	if err != nil {
		h.formError(w, r, http.StatusUnprocessableEntity, form, err.Error())
		return
	}

	trip, err := h.trips.CreateTrip(r.Context(), input)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("requestId", middleware.GetReqID(r.Context())).
			Str("name", input.Name).
			Msg("failed to create trip")
		h.formError(w, r, createFailureStatus(err), form, errorMessage(err, "Failed to create trip"))
		return
	}

	h.lists.Invalidate()
	h.logger.Info().
		Str("requestId", middleware.GetReqID(r.Context())).
		Str("tripId", trip.ID).
		Str("name", trip.Name).
		Msg("trip created")

	if wantsJSON(r) {
		h.respondJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"tripId":  trip.ID,
			"trip":    itinerary.FromAPI(trip),
		})
		return
	}
	http.Redirect(w, r, "/travel/"+url.PathEscape(trip.ID), http.StatusSeeOther)
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, status int, form url.Values, msg string) {
	if wantsJSON(r) {
		h.respondJSON(w, status, map[string]string{"error": msg})
		return
	}
	h.render(w, r, status, "create", formView{Error: msg, Values: form})
}

// handleLimited answers a throttled form submission
func (h *Handler) handleLimited(w http.ResponseWriter, r *http.Request, retryAfter int) {
	_ = r.ParseForm()
	h.formError(w, r, http.StatusTooManyRequests, r.PostForm,
		"Too many trips submitted, please wait a moment and try again.")
}

func (h *Handler) handleDeleteTravel(w http.ResponseWriter, r *http.Request) {
	tripID := strings.TrimSpace(chi.URLParam(r, "tripId"))
	if tripID == "" {
		h.respondError(w, r, ErrInvalidRequest("Trip ID is required"))
		return
	}

	if err := h.trips.DeleteTrip(r.Context(), tripID); err != nil {
		switch status := client.StatusOf(err); {
		case status == http.StatusNotFound:
			h.respondError(w, r, ErrNotFound("Trip not found"))
		case status == 0:
			h.respondError(w, r, ErrUnavailable())
		default:
			h.respondError(w, r, ErrBackend(http.StatusBadGateway, err.Error()))
		}
		return
	}

	h.lists.Invalidate()
	h.logger.Info().
		Str("requestId", middleware.GetReqID(r.Context())).
		Str("tripId", tripID).
		Msg("trip deleted")

	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/travel-list", http.StatusSeeOther)
}

// createFailureStatus passes client errors of the backend through and turns
// everything else into a gateway failure
func createFailureStatus(err error) int {
	status := client.StatusOf(err)
	switch {
	case status >= 400 && status < 500:
		return status
	case status == 0:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func errorMessage(err error, fallback string) string {
	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
