package repository

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserCache(t *testing.T) {
	cache := NewMemoryUserCache(time.Minute)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()
	user := &models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}

	require.NoError(t, cache.SetUser(ctx, user))
	user.Name = "mutated after store"

	got, err := cache.GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)

	now = now.Add(2 * time.Minute)
	got, err = cache.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.SetUser(ctx, user))
	require.NoError(t, cache.DeleteUser(ctx, 1))
	got, err = cache.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryRateLimiter(t *testing.T) {
	// zero refill rate leaves only the burst
	limiter := NewMemoryRateLimiter(0, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryRateLimiter_DefaultBurst(t *testing.T) {
	limiter := NewMemoryRateLimiter(0, 0)
	assert.Equal(t, 5, limiter.burst)
	assert.Same(t, limiter.getLimiter("k"), limiter.getLimiter("k"))
}
