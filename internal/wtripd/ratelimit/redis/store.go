// Package redis provides a rate limit store shared between server instances.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit"
)

// Store implements fixed window counters in Redis
type Store struct {
	client redis.Cmdable
}

// NewStore creates a new Redis-backed rate limit store
func NewStore(client redis.Cmdable) *Store {
	return &Store{client: client}
}

// keyStr converts a LimitKey to a Redis key
func keyStr(key ratelimit.LimitKey) string {
	return fmt.Sprintf("rate:%s:%s:%s:%s",
		key.Type,
		key.Token,
		key.RemoteIP,
		key.Endpoint,
	)
}

// Increment counts one operation in the current window. The window starts
// with the first operation and lasts limit.Period.
func (s *Store) Increment(ctx context.Context, key ratelimit.LimitKey, limit ratelimit.Limit) (int, error) {
	redisKey := keyStr(key)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, limit.Period).Err(); err != nil {
			return int(count), fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
		}
	}

	if int(count) > limit.Capacity() {
		return int(count), ratelimit.ErrLimitExceeded
	}
	return int(count), nil
}

// Reset clears a rate limit counter
func (s *Store) Reset(ctx context.Context, key ratelimit.LimitKey) error {
	if err := s.client.Del(ctx, keyStr(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
	}
	return nil
}

// GetCount returns the current count for a key without any side effects.
// Returns 0 for non-existent keys.
func (s *Store) GetCount(ctx context.Context, key ratelimit.LimitKey) (int, error) {
	val, err := s.client.Get(ctx, keyStr(key)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid count value: %v", ratelimit.ErrStoreError, err)
	}
	return count, nil
}

// Ping checks that Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
	}
	return nil
}
