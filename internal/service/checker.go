package service

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/errs"
	"shareit/internal/models"
)

var (
	_ domain.Checker       = (*ConsistencyChecker)(nil)
	_ domain.UserLookup    = (*UserService)(nil)
	_ domain.ItemLookup    = (*ItemService)(nil)
	_ domain.BookingLookup = (*BookingService)(nil)
)

// ConsistencyChecker lets services verify entities that belong to other
// services. It is constructed empty and wired once every service exists.
type ConsistencyChecker struct {
	users    domain.UserLookup
	items    domain.ItemLookup
	bookings domain.BookingLookup
}

func NewConsistencyChecker() *ConsistencyChecker {
	return &ConsistencyChecker{}
}

func (c *ConsistencyChecker) Wire(users domain.UserLookup, items domain.ItemLookup, bookings domain.BookingLookup) {
	c.users = users
	c.items = items
	c.bookings = bookings
}

// IsUserExistsForStrictCheck fails with a not-found error for unknown users.
func (c *ConsistencyChecker) IsUserExistsForStrictCheck(ctx context.Context, userID int64) error {
	exists, err := c.users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NotFound("user %d not found", userID)
	}
	return nil
}

// IsUserExistsForValidation fails with a validation error for unknown users.
func (c *ConsistencyChecker) IsUserExistsForValidation(ctx context.Context, userID int64) error {
	exists, err := c.users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.Validation("user %d not found", userID)
	}
	return nil
}

func (c *ConsistencyChecker) IsAvailableItem(ctx context.Context, itemID int64) (bool, error) {
	item, err := c.items.FindItem(ctx, itemID)
	if err != nil {
		return false, err
	}
	return item.Available, nil
}

func (c *ConsistencyChecker) IsItemOwner(ctx context.Context, itemID, userID int64) (bool, error) {
	item, err := c.items.FindItem(ctx, itemID)
	if err != nil {
		return false, err
	}
	return item.OwnerID == userID, nil
}

func (c *ConsistencyChecker) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return c.users.GetUser(ctx, userID)
}

func (c *ConsistencyChecker) GetLastBooking(ctx context.Context, itemID int64) (*models.BookingShort, error) {
	return short(c.bookings.LastBooking(ctx, itemID))
}

func (c *ConsistencyChecker) GetNextBooking(ctx context.Context, itemID int64) (*models.BookingShort, error) {
	return short(c.bookings.NextBooking(ctx, itemID))
}

func (c *ConsistencyChecker) GetBookingWithUserBookedItem(ctx context.Context, itemID, userID int64) (*models.BookingShort, error) {
	return short(c.bookings.CompletedBooking(ctx, itemID, userID))
}

func (c *ConsistencyChecker) GetCommentsByItemID(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	return c.items.Comments(ctx, itemID)
}

func (c *ConsistencyChecker) GetItemsByRequestID(ctx context.Context, requestID int64) ([]*models.Item, error) {
	return c.items.ItemsByRequest(ctx, requestID)
}

func (c *ConsistencyChecker) DeleteItemsByUser(ctx context.Context, userID int64) error {
	return c.items.DeleteItemsByOwner(ctx, userID)
}

func short(b *models.Booking, err error) (*models.BookingShort, error) {
	if err != nil || b == nil {
		return nil, err
	}
	return b.Short(), nil
}
