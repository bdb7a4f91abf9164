package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/errs"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserLookup struct {
	mock.Mock
}

func (m *mockUserLookup) UserExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserLookup) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockItemLookup struct {
	mock.Mock
}

func (m *mockItemLookup) FindItem(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockItemLookup) ItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockItemLookup) Comments(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}
func (m *mockItemLookup) DeleteItemsByOwner(ctx context.Context, ownerID int64) error {
	return m.Called(ctx, ownerID).Error(0)
}

type mockBookingLookup struct {
	mock.Mock
}

func (m *mockBookingLookup) LastBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingLookup) NextBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingLookup) CompletedBooking(ctx context.Context, itemID, userID int64) (*models.Booking, error) {
	args := m.Called(ctx, itemID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func newWiredChecker() (*ConsistencyChecker, *mockUserLookup, *mockItemLookup, *mockBookingLookup) {
	users := new(mockUserLookup)
	items := new(mockItemLookup)
	bookings := new(mockBookingLookup)
	c := NewConsistencyChecker()
	c.Wire(users, items, bookings)
	return c, users, items, bookings
}

func TestConsistencyChecker_UserExistence(t *testing.T) {
	ctx := context.Background()
	c, users, _, _ := newWiredChecker()
	users.On("UserExists", mock.Anything, int64(1)).Return(true, nil)
	users.On("UserExists", mock.Anything, int64(9)).Return(false, nil)
	users.On("UserExists", mock.Anything, int64(7)).Return(false, assert.AnError)

	assert.NoError(t, c.IsUserExistsForStrictCheck(ctx, 1))
	assert.NoError(t, c.IsUserExistsForValidation(ctx, 1))

	err := c.IsUserExistsForStrictCheck(ctx, 9)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	err = c.IsUserExistsForValidation(ctx, 9)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.NotErrorIs(t, err, errs.ErrNotFound)

	assert.ErrorIs(t, c.IsUserExistsForStrictCheck(ctx, 7), assert.AnError)
}

func TestConsistencyChecker_Items(t *testing.T) {
	ctx := context.Background()
	c, _, items, _ := newWiredChecker()
	items.On("FindItem", mock.Anything, int64(5)).Return(&models.Item{ID: 5, OwnerID: 1, Available: true}, nil)
	items.On("FindItem", mock.Anything, int64(9)).Return(nil, errs.NotFound("item 9 not found"))
	items.On("DeleteItemsByOwner", mock.Anything, int64(1)).Return(nil).Once()

	available, err := c.IsAvailableItem(ctx, 5)
	require.NoError(t, err)
	assert.True(t, available)

	owner, err := c.IsItemOwner(ctx, 5, 1)
	require.NoError(t, err)
	assert.True(t, owner)
	owner, err = c.IsItemOwner(ctx, 5, 2)
	require.NoError(t, err)
	assert.False(t, owner)

	_, err = c.IsAvailableItem(ctx, 9)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, c.DeleteItemsByUser(ctx, 1))
	items.AssertExpectations(t)
}

func TestConsistencyChecker_Bookings(t *testing.T) {
	ctx := context.Background()
	c, _, _, bookings := newWiredChecker()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	booking := &models.Booking{ID: 3, Start: start, End: start.Add(time.Hour), Booker: models.BookingUser{ID: 2, Name: "b"}}

	bookings.On("LastBooking", mock.Anything, int64(5)).Return(booking, nil)
	bookings.On("NextBooking", mock.Anything, int64(5)).Return(nil, nil)
	bookings.On("CompletedBooking", mock.Anything, int64(5), int64(2)).Return(booking, nil)

	last, err := c.GetLastBooking(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, &models.BookingShort{ID: 3, BookerID: 2, Start: start, End: start.Add(time.Hour)}, last)

	next, err := c.GetNextBooking(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, next)

	completed, err := c.GetBookingWithUserBookedItem(ctx, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), completed.ID)
}

func TestConsistencyChecker_Delegation(t *testing.T) {
	ctx := context.Background()
	c, users, items, _ := newWiredChecker()
	user := &models.User{ID: 1, Name: "a"}
	users.On("GetUser", mock.Anything, int64(1)).Return(user, nil)
	items.On("Comments", mock.Anything, int64(5)).Return([]*models.Comment{{ID: 1}}, nil)
	items.On("ItemsByRequest", mock.Anything, int64(8)).Return([]*models.Item{{ID: 5}}, nil)

	got, err := c.FindUserByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	comments, err := c.GetCommentsByItemID(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	found, err := c.GetItemsByRequestID(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
