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

type ItemService struct {
	repo     domain.ItemRepository
	comments domain.CommentRepository
	requests domain.RequestRepository
	tx       domain.Transactor
	checker  domain.Checker
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(
	repo domain.ItemRepository,
	comments domain.CommentRepository,
	requests domain.RequestRepository,
	tx domain.Transactor,
	checker domain.Checker,
	logger *zerolog.Logger,
) *ItemService {
	return &ItemService{
		repo:     repo,
		comments: comments,
		requests: requests,
		tx:       tx,
		checker:  checker,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Description = strings.TrimSpace(item.Description)
	if err := validate.Struct(item); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checker.IsUserExistsForStrictCheck(ctx, ownerID); err != nil {
			return err
		}
		if item.RequestID != nil {
			if _, err := s.requests.GetRequestByID(ctx, *item.RequestID); err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return errs.NotFound("request %d not found", *item.RequestID)
				}
				return err
			}
		}
		item.OwnerID = ownerID
		return s.repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// UpdateItem applies a partial update. Only the owner may change an item.
func (s *ItemService) UpdateItem(ctx context.Context, userID, itemID int64, update models.ItemUpdate) (*models.Item, error) {
	var item *models.Item
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
			return err
		}
		current, err := s.ownedItem(ctx, userID, itemID)
		if err != nil {
			return err
		}

		if update.Name != nil {
			current.Name = strings.TrimSpace(*update.Name)
		}
		if update.Description != nil {
			current.Description = strings.TrimSpace(*update.Description)
		}
		if update.Available != nil {
			current.Available = *update.Available
		}
		if err := validate.Struct(current); err != nil {
			return err
		}

		if err := s.repo.UpdateItem(ctx, current); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, userID, itemID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
			return err
		}
		if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
			return err
		}
		return s.repo.DeleteItem(ctx, itemID)
	})
}

// GetItem returns the item card. Last and next bookings are shown to the owner only.
func (s *ItemService) GetItem(ctx context.Context, userID, itemID int64) (*models.ItemView, error) {
	if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
		return nil, err
	}
	item, err := s.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, item, item.OwnerID == userID)
}

// GetOwnerItems lists the owner's items, id ascending, each with bookings and comments.
func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID int64, from int, size *int) ([]*models.ItemView, error) {
	if err := s.checker.IsUserExistsForStrictCheck(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := Paginate(ctx, from, size, func(ctx context.Context, page models.Page) ([]*models.Item, bool, error) {
		return s.repo.GetItemsByOwner(ctx, ownerID, page)
	})
	if err != nil {
		return nil, err
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		v, err := s.view(ctx, item, true)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Search matches available items by name or description, ignoring case. Blank text finds nothing.
func (s *ItemService) Search(ctx context.Context, userID int64, text string, from int, size *int) ([]*models.Item, error) {
	if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := NewPagination(from, size); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []*models.Item{}, nil
	}

	return Paginate(ctx, from, size, func(ctx context.Context, page models.Page) ([]*models.Item, bool, error) {
		return s.repo.SearchItems(ctx, text, page)
	})
}

// AddComment lets a user review an item they have finished an approved booking of.
func (s *ItemService) AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error) {
	comment := &models.Comment{Text: strings.TrimSpace(text), ItemID: itemID, AuthorID: userID}
	if err := validate.Struct(comment); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		author, err := s.checker.FindUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := s.FindItem(ctx, itemID); err != nil {
			return err
		}

		booking, err := s.checker.GetBookingWithUserBookedItem(ctx, itemID, userID)
		if err != nil {
			return err
		}
		if booking == nil {
			return errs.Validation("user did not book this item")
		}

		comment.AuthorName = author.Name
		comment.Created = s.now().UTC()
		return s.comments.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// FindItem loads an item or returns a not-found error.
func (s *ItemService) FindItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.repo.GetItemByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errs.NotFound("item %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) ItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error) {
	return s.repo.GetItemsByRequestID(ctx, requestID)
}

func (s *ItemService) Comments(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	return s.comments.GetCommentsByItemID(ctx, itemID)
}

func (s *ItemService) DeleteItemsByOwner(ctx context.Context, ownerID int64) error {
	deleted, err := s.repo.DeleteItemsByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	s.logger.Debug().Int64("owner_id", ownerID).Int64("deleted", deleted).Msg("owner items deleted")
	return nil
}

func (s *ItemService) ownedItem(ctx context.Context, userID, itemID int64) (*models.Item, error) {
	item, err := s.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		return nil, errs.NotFound("item %d not found for user %d", itemID, userID)
	}
	return item, nil
}

func (s *ItemService) view(ctx context.Context, item *models.Item, withBookings bool) (*models.ItemView, error) {
	v := &models.ItemView{Item: *item}

	comments, err := s.checker.GetCommentsByItemID(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	v.Comments = comments

	if withBookings {
		if v.LastBooking, err = s.checker.GetLastBooking(ctx, item.ID); err != nil {
			return nil, err
		}
		if v.NextBooking, err = s.checker.GetNextBooking(ctx, item.ID); err != nil {
			return nil, err
		}
	}
	return v, nil
}
