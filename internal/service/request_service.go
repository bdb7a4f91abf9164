package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/errs"
	"shareit/internal/models"
	"shareit/internal/validate"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo    domain.RequestRepository
	tx      domain.Transactor
	checker domain.Checker
	logger  *zerolog.Logger
	now     func() time.Time
}

func NewRequestService(repo domain.RequestRepository, tx domain.Transactor, checker domain.Checker, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		repo:    repo,
		tx:      tx,
		checker: checker,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	request := &models.ItemRequest{
		Description: strings.TrimSpace(description),
		RequestorID: userID,
		Items:       []*models.Item{},
	}
	if err := validate.Struct(request); err != nil {
		return nil, err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
			return err
		}
		request.Created = s.now().UTC()
		return s.repo.CreateRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("user_id", userID).Msg("item request created")
	return request, nil
}

func (s *RequestService) GetRequest(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error) {
	if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.repo.GetRequestByID(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errs.NotFound("request %d not found", requestID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// GetOwnRequests returns the user's requests, newest first.
func (s *RequestService) GetOwnRequests(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.GetRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// GetOtherRequests pages through requests made by everyone except userID, newest first.
func (s *RequestService) GetOtherRequests(ctx context.Context, userID int64, from int, size *int) ([]*models.ItemRequest, error) {
	if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := Paginate(ctx, from, size, func(ctx context.Context, page models.Page) ([]*models.ItemRequest, bool, error) {
		return s.repo.GetRequestsExcept(ctx, userID, page)
	})
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequest, error) {
	for _, r := range requests {
		if err := s.attachItems(ctx, r); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (s *RequestService) attachItems(ctx context.Context, r *models.ItemRequest) error {
	items, err := s.checker.GetItemsByRequestID(ctx, r.ID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*models.Item{}
	}
	r.Items = items
	return nil
}
