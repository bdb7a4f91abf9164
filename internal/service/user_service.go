package service

import (
	"context"
	"errors"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/errs"
	"shareit/internal/models"
	"shareit/internal/validate"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo    domain.UserRepository
	cache   domain.UserCache
	tx      domain.Transactor
	checker domain.Checker
	logger  *zerolog.Logger
}

// NewUserService builds the service. cache may be nil.
func NewUserService(repo domain.UserRepository, cache domain.UserCache, tx domain.Transactor, checker domain.Checker, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:    repo,
		cache:   cache,
		tx:      tx,
		checker: checker,
		logger:  logger,
	}
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if err := validate.Struct(user); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.CreateUser(ctx, user)
	})
	if errors.Is(err, database.ErrDuplicate) {
		return nil, errs.AlreadyExists("email %s already exists", user.Email)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("create user error")
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

// GetUser returns the user, reading through the cache when one is configured.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Int64("user_id", id).Msg("user cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errs.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, err
	}

	s.cacheUser(ctx, user)
	return user, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetUsers(ctx)
}

func (s *UserService) UserExists(ctx context.Context, id int64) (bool, error) {
	return s.repo.UserExists(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	var user *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetUserByID(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return errs.NotFound("user %d not found", id)
		}
		if err != nil {
			return err
		}

		if update.Name != nil {
			current.Name = strings.TrimSpace(*update.Name)
		}
		if update.Email != nil {
			current.Email = strings.TrimSpace(*update.Email)
		}
		if err := validate.Struct(current); err != nil {
			return err
		}

		if err := s.repo.UpdateUser(ctx, current); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return errs.AlreadyExists("email %s already exists", current.Email)
			}
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return user, nil
}

// DeleteUser removes the user together with the items they own.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checker.IsUserExistsForStrictCheck(ctx, id); err != nil {
			return err
		}
		if err := s.checker.DeleteItemsByUser(ctx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteUser(ctx, id); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return errs.NotFound("user %d not found", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) cacheUser(ctx context.Context, user *models.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetUser(ctx, user); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("user cache write failed")
	}
}

func (s *UserService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteUser(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", id).Msg("user cache invalidation failed")
	}
}
