// Package client provides an HTTP client for the trips REST backend. Every
// failure, whether the backend answered with an error status or could not be
// reached at all, is returned as an *Error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is where the backend listens during local development
const DefaultBaseURL = "http://localhost:8081/api"

// Observer is notified once per request with the outcome. Status is 0 when
// the backend could not be reached.
type Observer func(method, endpoint string, status int, elapsed time.Duration)

// Client performs requests against the trips backend
type Client struct {
	// baseURL is prefixed to every endpoint, including its path (e.g. /api)
	baseURL string
	// httpClient is the underlying HTTP client
	httpClient *http.Client
	// token is sent as a bearer token when set
	token string
	// observe receives per-request outcomes when set
	observe Observer
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithToken sets the authentication token
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the overall timeout of a single request
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithObserver registers a callback that sees every request outcome
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observe = o
	}
}

// NewClient creates a new API client. The base URL keeps its path so that
// endpoints can be appended to it verbatim.
func NewClient(baseURL string, options ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// BaseURL returns the URL endpoints are appended to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions describes a single request
type RequestOptions struct {
	// Method defaults to GET
	Method string
	// Header is merged over the default headers, caller values win
	Header http.Header
	// Body is encoded as JSON when not nil
	Body interface{}
}

// Request sends one request to baseURL+endpoint and returns the raw JSON body
// of a successful response. A 204 No Content response yields a nil body
// without reading it. Failures are returned as *Error.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	body, status, err := c.do(ctx, method, endpoint, opts)
	if c.observe != nil {
		c.observe(method, endpoint, status, time.Since(start))
	}
	return body, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, opts RequestOptions) (json.RawMessage, int, error) {
	var bodyReader io.Reader
	if opts.Body != nil {
		bodyBytes, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("error encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, responseError(resp)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, resp.StatusCode, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, transportError(err)
	}
	if !json.Valid(data) {
		return nil, resp.StatusCode, &Error{
			Message: "invalid JSON in response body",
			Status:  0,
		}
	}
	return json.RawMessage(data), resp.StatusCode, nil
}

// transportError normalizes a failure to talk to the backend. Failures that
// already are an *Error are passed through unchanged.
func transportError(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Message: err.Error(), Status: 0, err: err}
	}
	return &Error{Message: MsgUnreachable, Status: 0, err: err}
}

// decode sends a request and decodes a JSON response into T. It returns nil
// for a 204 No Content response.
func decode[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (*T, error) {
	raw, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("error decoding response: %v", err),
			Status:  0,
			err:     err,
		}
	}
	return &v, nil
}
