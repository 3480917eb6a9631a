package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// MsgUnreachable is the message of every transport failure
const MsgUnreachable = "Unable to connect to the server"

// Error is the normalized failure of a backend call. Status is the HTTP
// status of the response, or 0 when no response was received.
type Error struct {
	// Message is a human-readable description suitable for showing to users
	Message string `json:"message"`
	// Status is the HTTP status code, 0 for transport failures
	Status int `json:"status"`
	// Details carries extra structured data, nil for backend responses
	Details interface{} `json:"details,omitempty"`

	err error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the transport error, if any
func (e *Error) Unwrap() error {
	return e.err
}

// IsUnreachable reports whether err is a failure to reach the backend
func IsUnreachable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// IsNotFound reports whether the backend answered 404
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// errorBody is the error payload shape the backend may send. Each field is
// optional and kept raw, so that a field of an unexpected type never hides
// the others.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

type fieldError struct {
	Field   string
	Message string
}

// fieldErrors keeps field validation messages in the order the backend sent them
type fieldErrors []fieldError

func (f fieldErrors) String() string {
	parts := make([]string, 0, len(f))
	for _, fe := range f {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, ", ")
}

// parseFieldErrors reads the errors member of an error body. An object maps
// field names to messages and keeps its key order. An array is read as a list
// of {field, defaultMessage} entries, the shape of Spring validation errors;
// entries without a field are skipped. Anything else yields no field errors.
func parseFieldErrors(raw json.RawMessage) fieldErrors {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '{':
		return objectFieldErrors(raw)
	case '[':
		var entries []struct {
			Field          string          `json:"field"`
			DefaultMessage json.RawMessage `json:"defaultMessage"`
			Message        json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil
		}
		var out fieldErrors
		for _, e := range entries {
			if e.Field == "" {
				continue
			}
			msg := e.DefaultMessage
			if len(msg) == 0 {
				msg = e.Message
			}
			out = append(out, fieldError{Field: e.Field, Message: valueText(msg)})
		}
		return out
	default:
		return nil
	}
}

// objectFieldErrors decodes a JSON object while preserving key order
func objectFieldErrors(data []byte) fieldErrors {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil
	}

	var out fieldErrors
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		field, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return out
		}
		out = append(out, fieldError{Field: field, Message: valueText(raw)})
	}
	return out
}

// valueText renders a JSON value for an error message. Strings are used as
// is, null reads "null", arrays are joined with commas and other values keep
// their JSON text.
func valueText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				parts = append(parts, valueText(item))
			}
			return strings.Join(parts, ",")
		}
	}
	return string(raw)
}

// present reports whether a message member carries a usable value. Missing,
// null, false, zero and empty string members are skipped.
func present(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// responseError builds the normalized error for a non-2xx response
func responseError(resp *http.Response) *Error {
	data, _ := io.ReadAll(resp.Body)
	return &Error{
		Message: errorMessage(resp.StatusCode, statusText(resp), data),
		Status:  resp.StatusCode,
	}
}

// errorMessage resolves the message of an error response. The body is tried
// as a JSON string, then as an errorBody object; anything that is not JSON is
// used verbatim when non-empty.
func errorMessage(status int, text string, body []byte) string {
	msg := fmt.Sprintf("HTTP %d: %s", status, text)

	if !json.Valid(body) {
		if raw := strings.TrimSpace(string(body)); raw != "" {
			msg = raw
		}
		return msg
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		if s != "" {
			msg = s
		}
		return msg
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return msg
	}

	switch {
	case present(eb.Message):
		msg = valueText(eb.Message)
	case present(eb.Error):
		msg = valueText(eb.Error)
	}
	if fields := parseFieldErrors(eb.Errors); len(fields) > 0 {
		msg = msg + ". " + fields.String()
	}
	return msg
}

// statusText returns the reason phrase sent by the server, falling back to
// the standard text for the code.
func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
