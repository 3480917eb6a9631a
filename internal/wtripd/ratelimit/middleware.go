package ratelimit

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options configure the rate limit middleware
type Options struct {
	// LimitType selects the registered limit
	LimitType string

	// SkipLimitCheck exempts matching requests
	SkipLimitCheck func(r *http.Request) bool

	// OnLimited writes the response for a rejected request. The default
	// answers 429 with a JSON body.
	OnLimited func(w http.ResponseWriter, r *http.Request, retryAfter int)
}

// Middleware rejects requests over the limit with 429 Too Many Requests.
// Store failures are logged and the request is let through.
func Middleware(service *Service, logger zerolog.Logger, options Options) func(http.Handler) http.Handler {
	onLimited := options.OnLimited
	if onLimited == nil {
		onLimited = writeLimitExceeded
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if options.SkipLimitCheck != nil && options.SkipLimitCheck(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := buildKey(r, options)
			limit := service.GetLimit(options.LimitType)
			if limit.Rate > 0 {
				w.Header().Set("RateLimit-Limit", strconv.Itoa(limit.Rate))
				if limit.BurstSize > 0 {
					w.Header().Set("RateLimit-Burst", strconv.Itoa(limit.BurstSize))
				}
			}

			err := service.Allow(r.Context(), key)
			switch {
			case err == nil:
			case errors.Is(err, ErrLimitExceeded):
				retryAfter := retryAfterSeconds(limit)
				logger.Warn().
					Str("requestId", middleware.GetReqID(r.Context())).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("remoteIP", key.RemoteIP).
					Int("retryAfter", retryAfter).
					Msg("rate limit exceeded")

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				onLimited(w, r, retryAfter)
				return
			default:
				logger.Error().
					Err(err).
					Str("requestId", middleware.GetReqID(r.Context())).
					Str("path", r.URL.Path).
					Msg("rate limit unavailable, allowing request")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeLimitExceeded(w http.ResponseWriter, r *http.Request, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintf(w, `{"error":"rate_limit_exceeded","message":"Too many requests, please retry after %d seconds"}`, retryAfter)
}

// retryAfterSeconds is the time one operation takes to be replenished
func retryAfterSeconds(limit Limit) int {
	if limit.Rate <= 0 {
		return 1
	}
	secs := int(limit.Period.Seconds()) / limit.Rate
	if secs < 1 {
		secs = 1
	}
	return secs
}

// buildKey creates a rate limit key from the request
func buildKey(r *http.Request, options Options) LimitKey {
	key := LimitKey{
		Type:     options.LimitType,
		RemoteIP: realIP(r),
		Endpoint: r.URL.Path,
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		key.Token = auth[len("Bearer "):]
	}
	return key
}

// realIP returns the client address without its port. Proxy headers are
// resolved by chi's RealIP middleware before this runs.
func realIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
