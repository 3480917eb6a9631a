// Package memory provides an in-process rate limit store backed by token
// buckets.
package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Store keeps one token bucket per key. A bucket holds Limit.Capacity()
// tokens and refills at Rate per Period.
type Store struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func keyStr(key ratelimit.LimitKey) string {
	return key.Type + "|" + key.Token + "|" + key.RemoteIP + "|" + key.Endpoint
}

// Increment takes one token from the key's bucket
func (s *Store) Increment(_ context.Context, key ratelimit.LimitKey, limit ratelimit.Limit) (int, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return 0, ratelimit.ErrInvalidLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now, limit.Period)

	k := keyStr(key)
	b, ok := s.buckets[k]
	if !ok {
		every := rate.Every(limit.Period / time.Duration(limit.Rate))
		b = &bucket{limiter: rate.NewLimiter(every, limit.Capacity())}
		s.buckets[k] = b
	}
	b.lastSeen = now

	if !b.limiter.AllowN(now, 1) {
		return limit.Capacity() + 1, ratelimit.ErrLimitExceeded
	}
	return limit.Capacity() - int(b.limiter.TokensAt(now)), nil
}

// Reset clears a rate limit counter
func (s *Store) Reset(_ context.Context, key ratelimit.LimitKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buckets, keyStr(key))
	return nil
}

// Len returns the number of tracked keys
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// sweep drops buckets idle for longer than period. A bucket idle that long
// has refilled completely, so dropping it does not change any decision.
func (s *Store) sweep(now time.Time, period time.Duration) {
	if now.Sub(s.lastSweep) < period {
		return
	}
	s.lastSweep = now
	for k, b := range s.buckets {
		if now.Sub(b.lastSeen) > period {
			delete(s.buckets, k)
		}
	}
}
