package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// failover tracks whether the primary backend is usable. After a failure the
// primary is retried once per recoveryInterval.
type failover struct {
	name      string
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func (f *failover) usePrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	return f.now().Sub(time.Unix(0, f.lastCheck.Load())) > recoveryInterval
}

func (f *failover) primaryFailed(err error) {
	if !f.isDown.Swap(true) {
		f.logger.Error().Err(err).Str("backend", f.name).Msg("primary backend failed, falling back to memory")
	}
	f.lastCheck.Store(f.now().UnixNano())
}

func (f *failover) primaryOK() {
	if f.isDown.Swap(false) {
		f.logger.Info().Str("backend", f.name).Msg("primary backend recovered")
	}
}

type FailoverUserCache struct {
	failover
	primary  domain.UserCache
	fallback domain.UserCache
}

func NewFailoverUserCache(primary, fallback domain.UserCache, logger *zerolog.Logger) *FailoverUserCache {
	return &FailoverUserCache{
		failover: failover{name: "user_cache", logger: logger, now: time.Now},
		primary:  primary,
		fallback: fallback,
	}
}

func (r *FailoverUserCache) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if r.usePrimary() {
		user, err := r.primary.GetUser(ctx, id)
		if err == nil {
			r.primaryOK()
			return user, nil
		}
		r.primaryFailed(err)
	}
	return r.fallback.GetUser(ctx, id)
}

func (r *FailoverUserCache) SetUser(ctx context.Context, user *models.User) error {
	if r.usePrimary() {
		err := r.primary.SetUser(ctx, user)
		if err == nil {
			r.primaryOK()
			return nil
		}
		r.primaryFailed(err)
	}
	return r.fallback.SetUser(ctx, user)
}

// DeleteUser clears the fallback as well as the primary.
func (r *FailoverUserCache) DeleteUser(ctx context.Context, id int64) error {
	_ = r.fallback.DeleteUser(ctx, id)
	if r.usePrimary() {
		err := r.primary.DeleteUser(ctx, id)
		if err == nil {
			r.primaryOK()
			return nil
		}
		r.primaryFailed(err)
	}
	return nil
}

type FailoverRateLimiter struct {
	failover
	primary  domain.RateLimiter
	fallback domain.RateLimiter
}

func NewFailoverRateLimiter(primary, fallback domain.RateLimiter, logger *zerolog.Logger) *FailoverRateLimiter {
	return &FailoverRateLimiter{
		failover: failover{name: "rate_limiter", logger: logger, now: time.Now},
		primary:  primary,
		fallback: fallback,
	}
}

func (r *FailoverRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.Allow(ctx, key)
		if err == nil {
			r.primaryOK()
			return allowed, nil
		}
		r.primaryFailed(err)
	}
	return r.fallback.Allow(ctx, key)
}
