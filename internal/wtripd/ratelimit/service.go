package ratelimit

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// LimitCreateTrip is the limit type applied to trip creation
const LimitCreateTrip = "create_trip"

// Service applies registered limits using a Store
type Service struct {
	store   Store
	logger  zerolog.Logger
	limits  map[string]Limit
	limitsM sync.RWMutex
}

// NewService creates a new rate limiting service
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "ratelimit").Logger(),
		limits: make(map[string]Limit),
	}
}

// RegisterLimit adds or updates a rate limit configuration
func (s *Service) RegisterLimit(limitType string, limit Limit) error {
	if limitType == "" {
		return ErrInvalidKey
	}
	if limit.Rate <= 0 || limit.Period <= 0 || limit.BurstSize < 0 {
		return ErrInvalidLimit
	}

	s.limitsM.Lock()
	defer s.limitsM.Unlock()

	s.limits[limitType] = limit
	return nil
}

// GetLimit returns the configured limit for a key type
func (s *Service) GetLimit(limitType string) Limit {
	s.limitsM.RLock()
	defer s.limitsM.RUnlock()

	return s.limits[limitType]
}

// Allow records an operation and reports ErrLimitExceeded when it must be
// rejected. Types without a registered limit are always allowed.
func (s *Service) Allow(ctx context.Context, key LimitKey) error {
	if key.Type == "" {
		return ErrInvalidKey
	}

	limit := s.GetLimit(key.Type)
	if limit.Rate == 0 {
		s.logger.Warn().Str("type", key.Type).Msg("no rate limit configured for type")
		return nil
	}

	count, err := s.store.Increment(ctx, key, limit)
	if err != nil {
		if !errors.Is(err, ErrLimitExceeded) {
			s.logger.Error().
				Err(err).
				Str("type", key.Type).
				Str("endpoint", key.Endpoint).
				Msg("rate limit check failed")
		}
		return err
	}

	s.logger.Debug().
		Str("type", key.Type).
		Int("count", count).
		Int("limit", limit.Rate).
		Int("burst", limit.BurstSize).
		Str("remoteIP", key.RemoteIP).
		Msg("rate limit check")

	return nil
}

// Reset clears rate limit counters for a key
func (s *Service) Reset(ctx context.Context, key LimitKey) error {
	if key.Type == "" {
		return ErrInvalidKey
	}

	if err := s.store.Reset(ctx, key); err != nil {
		s.logger.Error().
			Err(err).
			Str("type", key.Type).
			Str("endpoint", key.Endpoint).
			Msg("failed to reset rate limit")
		return err
	}

	return nil
}
