package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit"
)

func TestStoreIncrement(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }

	key := ratelimit.LimitKey{Type: "create_trip", RemoteIP: "10.0.0.1"}
	limit := ratelimit.Limit{Rate: 2, Period: time.Minute, BurstSize: 1}

	for i := 1; i <= 3; i++ {
		count, err := s.Increment(context.Background(), key, limit)
		require.NoError(t, err, "operation %d", i)
		assert.Equal(t, i, count)
	}

	_, err := s.Increment(context.Background(), key, limit)
	assert.ErrorIs(t, err, ratelimit.ErrLimitExceeded)

	// one token every 30 seconds
	now = now.Add(30 * time.Second)
	_, err = s.Increment(context.Background(), key, limit)
	assert.NoError(t, err)
}

func TestStoreKeysAreIndependent(t *testing.T) {
	s := NewStore()
	limit := ratelimit.Limit{Rate: 1, Period: time.Hour}

	a := ratelimit.LimitKey{Type: "create_trip", RemoteIP: "10.0.0.1"}
	b := ratelimit.LimitKey{Type: "create_trip", RemoteIP: "10.0.0.2"}

	_, err := s.Increment(context.Background(), a, limit)
	require.NoError(t, err)
	_, err = s.Increment(context.Background(), a, limit)
	assert.ErrorIs(t, err, ratelimit.ErrLimitExceeded)

	_, err = s.Increment(context.Background(), b, limit)
	assert.NoError(t, err)
}

func TestStoreReset(t *testing.T) {
	s := NewStore()
	key := ratelimit.LimitKey{Type: "create_trip"}
	limit := ratelimit.Limit{Rate: 1, Period: time.Hour}

	_, err := s.Increment(context.Background(), key, limit)
	require.NoError(t, err)
	require.NoError(t, s.Reset(context.Background(), key))

	_, err = s.Increment(context.Background(), key, limit)
	assert.NoError(t, err)
}

func TestStoreSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }
	limit := ratelimit.Limit{Rate: 5, Period: time.Minute}

	_, err := s.Increment(context.Background(), ratelimit.LimitKey{Type: "t", RemoteIP: "a"}, limit)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	now = now.Add(2 * time.Minute)
	_, err = s.Increment(context.Background(), ratelimit.LimitKey{Type: "t", RemoteIP: "b"}, limit)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestStoreInvalidLimit(t *testing.T) {
	_, err := NewStore().Increment(context.Background(), ratelimit.LimitKey{Type: "t"}, ratelimit.Limit{})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)
}
