package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/models"

	"golang.org/x/time/rate"
)

// MemoryUserCache keeps users in process for the cache TTL.
type MemoryUserCache struct {
	users sync.Map
	ttl   time.Duration
	now   func() time.Time
}

type cachedUser struct {
	user      models.User
	expiresAt time.Time
}

func NewMemoryUserCache(ttl time.Duration) *MemoryUserCache {
	return &MemoryUserCache{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemoryUserCache) GetUser(ctx context.Context, id int64) (*models.User, error) {
	val, ok := r.users.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(cachedUser)
	if r.now().After(entry.expiresAt) {
		r.users.Delete(id)
		return nil, nil
	}
	user := entry.user
	return &user, nil
}

func (r *MemoryUserCache) SetUser(ctx context.Context, user *models.User) error {
	r.users.Store(user.ID, cachedUser{user: *user, expiresAt: r.now().Add(r.ttl)})
	return nil
}

func (r *MemoryUserCache) DeleteUser(ctx context.Context, id int64) error {
	r.users.Delete(id)
	return nil
}

// MemoryRateLimiter keeps one token bucket per key.
type MemoryRateLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func NewMemoryRateLimiter(rps float64, burst int) *MemoryRateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &MemoryRateLimiter{
		rps:   rate.Limit(rps),
		burst: burst,
	}
}

func (l *MemoryRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.getLimiter(key).Allow(), nil
}

func (l *MemoryRateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}
