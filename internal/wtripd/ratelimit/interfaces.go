// Package ratelimit throttles form submissions per client.
package ratelimit

import (
	"context"
	"time"
)

// LimitKey identifies a specific rate limit counter
type LimitKey struct {
	Type     string // e.g. "create_trip"
	Token    string // bearer token, empty for anonymous users
	RemoteIP string // client address
	Endpoint string // request path
}

// Store handles rate limit state
type Store interface {
	// Increment records one operation and returns the number of operations
	// counted in the current window. It returns ErrLimitExceeded once the
	// limit including its burst is used up.
	Increment(ctx context.Context, key LimitKey, limit Limit) (int, error)

	// Reset clears a rate limit counter
	Reset(ctx context.Context, key LimitKey) error
}

// Limit defines a rate limit
type Limit struct {
	// Rate is the number of operations allowed per Period
	Rate int

	// Period is the time window for the rate
	Period time.Duration

	// BurstSize allows a short burst over the rate
	BurstSize int
}

// Capacity is the number of operations accepted before limiting kicks in
func (l Limit) Capacity() int {
	return l.Rate + l.BurstSize
}

// Error types for rate limiting
var (
	ErrLimitExceeded = NewError("RATE_LIMITED", "rate limit exceeded")
	ErrStoreError    = NewError("STORE_ERROR", "rate limit store error")
	ErrInvalidLimit  = NewError("INVALID_LIMIT", "invalid rate limit configuration")
	ErrInvalidKey    = NewError("INVALID_KEY", "invalid rate limit key")
)

// Error represents a rate limiting error
type Error struct {
	Code    string
	Message string
}

func (e Error) Error() string {
	return e.Message
}

// NewError creates a new rate limit error
func NewError(code string, message string) Error {
	return Error{
		Code:    code,
		Message: message,
	}
}
