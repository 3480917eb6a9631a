package web

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPError is an error that knows the status it should be answered with
type HTTPError interface {
	error
	StatusCode() int
}

// PageError is an HTTPError carrying the texts of the error page
type PageError struct {
	Status    int       `json:"status"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *PageError) Error() string {
	return e.Message
}

// StatusCode implements HTTPError
func (e *PageError) StatusCode() int {
	return e.Status
}

const (
	defaultDetails = "Something went wrong while loading this page."
	defaultAction  = "Please try refreshing the page or contact support if the problem persists."
	backendAction  = "Please start the backend server (port 8081) and refresh the page."
)

// ErrInvalidRequest answers 400 with msg
func ErrInvalidRequest(msg string) error {
	return &PageError{Status: http.StatusBadRequest, Message: msg}
}

// ErrNotFound answers 404 with msg
func ErrNotFound(msg string) error {
	return &PageError{Status: http.StatusNotFound, Message: msg}
}

// ErrUnavailable answers 503 with the connection error page shown when the
// trip list cannot be loaded
func ErrUnavailable() error {
	return &PageError{
		Status:  http.StatusServiceUnavailable,
		Title:   "Connection Error",
		Message: "Unable to connect to the travel server. Please check if the backend service is running.",
		Details: "The server might be down or there could be a network issue.",
		Action:  backendAction,
	}
}

// ErrBackend answers with status and the backend's message
func ErrBackend(status int, msg string) error {
	return &PageError{Status: status, Message: msg}
}

// pageFor fills in the texts shown for err. A 404 always gets the not found
// page; a 503 keeps the texts it carries and falls back to the service
// unavailable page; anything else is titled after its status.
func pageFor(err error) *PageError {
	page := &PageError{
		Status:  http.StatusInternalServerError,
		Message: "An unexpected error occurred.",
	}
	if pe, ok := err.(*PageError); ok {
		*page = *pe
	} else if he, ok := err.(HTTPError); ok {
		page.Status = he.StatusCode()
		page.Message = he.Error()
	}

	switch page.Status {
	case http.StatusNotFound:
		page.Title = "Page Not Found"
		page.Message = "The page you're looking for doesn't exist."
		page.Details = "Check the URL or return to the home page."
	case http.StatusServiceUnavailable:
		page.Title = orDefault(page.Title, "Service Unavailable")
		page.Message = orDefault(page.Message, "Unable to connect to the server.")
		page.Details = orDefault(page.Details, "The backend service might be down.")
		page.Action = orDefault(page.Action, backendAction)
	default:
		page.Title = orDefault(page.Title, fmt.Sprintf("Error %d", page.Status))
		page.Message = orDefault(page.Message, http.StatusText(page.Status))
	}
	page.Details = orDefault(page.Details, defaultDetails)
	page.Action = orDefault(page.Action, defaultAction)
	if page.Timestamp.IsZero() {
		page.Timestamp = time.Now().UTC()
	}
	return page
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
