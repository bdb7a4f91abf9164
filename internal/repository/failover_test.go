package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockCache) SetUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockCache) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func TestFailoverUserCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverUserCache(primary, fallback, &logger)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()
	user := &models.User{ID: 1, Name: "Alice"}

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("GetUser", ctx, int64(1)).Return(user, nil).Once()

		got, err := repo.GetUser(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, user, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailure", func(t *testing.T) {
		primary.On("SetUser", ctx, user).Return(errors.New("redis down")).Once()
		fallback.On("SetUser", ctx, user).Return(nil).Once()

		err := repo.SetUser(ctx, user)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		fallback.On("GetUser", ctx, int64(1)).Return(user, nil).Once()

		got, err := repo.GetUser(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, user, got)
		primary.AssertNumberOfCalls(t, "GetUser", 1)
	})

	t.Run("DeleteClearsFallback", func(t *testing.T) {
		fallback.On("DeleteUser", ctx, int64(1)).Return(nil).Once()

		assert.NoError(t, repo.DeleteUser(ctx, 1))
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "DeleteUser", ctx, int64(1))
	})

	t.Run("Recovery", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("GetUser", ctx, int64(1)).Return(user, nil).Once()

		got, err := repo.GetUser(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, user, got)
		assert.False(t, repo.isDown.Load())
	})
}

func TestFailoverRateLimiter(t *testing.T) {
	primary := new(mockLimiter)
	fallback := new(mockLimiter)
	logger := zerolog.New(io.Discard)
	limiter := NewFailoverRateLimiter(primary, fallback, &logger)
	ctx := context.Background()

	primary.On("Allow", ctx, "user:1").Return(true, nil).Once()
	allowed, err := limiter.Allow(ctx, "user:1")
	assert.NoError(t, err)
	assert.True(t, allowed)

	primary.On("Allow", ctx, "user:1").Return(false, errors.New("redis down")).Once()
	fallback.On("Allow", ctx, "user:1").Return(false, nil).Once()
	allowed, err = limiter.Allow(ctx, "user:1")
	assert.NoError(t, err)
	assert.False(t, allowed)

	fallback.On("Allow", ctx, "user:1").Return(true, nil).Once()
	allowed, err = limiter.Allow(ctx, "user:1")
	assert.NoError(t, err)
	assert.True(t, allowed)

	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}
