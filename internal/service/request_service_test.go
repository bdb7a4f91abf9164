package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/errs"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRequestService() (*RequestService, *mockRequestRepo, *mockChecker) {
	repo := new(mockRequestRepo)
	checker := new(mockChecker)
	logger := zerolog.Nop()
	s := NewRequestService(repo, fakeTx{}, checker, &logger)
	s.now = func() time.Time { return testNow }
	return s, repo, checker
}

func TestRequestService_CreateRequest(t *testing.T) {
	s, repo, checker := newTestRequestService()
	checker.On("IsUserExistsForStrictCheck", mock.Anything, bookerID).Return(nil)
	repo.On("CreateRequest", mock.Anything, mock.MatchedBy(func(r *models.ItemRequest) bool {
		return r.Description == "need a tent" && r.RequestorID == bookerID && r.Created.Equal(testNow)
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.ItemRequest).ID = 8
	}).Return(nil)

	request, err := s.CreateRequest(context.Background(), bookerID, " need a tent ")
	require.NoError(t, err)
	assert.Equal(t, int64(8), request.ID)
	assert.NotNil(t, request.Items)

	_, err = s.CreateRequest(context.Background(), bookerID, "")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRequestService_GetRequest(t *testing.T) {
	ctx := context.Background()
	items := []*models.Item{{ID: 5, Name: "Tent"}}

	s, repo, checker := newTestRequestService()
	checker.On("IsUserExistsForStrictCheck", mock.Anything, otherID).Return(nil)
	repo.On("GetRequestByID", mock.Anything, int64(8)).Return(&models.ItemRequest{ID: 8, RequestorID: bookerID}, nil)
	checker.On("GetItemsByRequestID", mock.Anything, int64(8)).Return(items, nil)

	request, err := s.GetRequest(ctx, otherID, 8)
	require.NoError(t, err)
	assert.Equal(t, items, request.Items)

	s, repo, checker = newTestRequestService()
	checker.On("IsUserExistsForStrictCheck", mock.Anything, otherID).Return(nil)
	repo.On("GetRequestByID", mock.Anything, int64(9)).Return(nil, database.ErrNotFound)

	_, err = s.GetRequest(ctx, otherID, 9)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRequestService_GetOwnRequests(t *testing.T) {
	s, repo, checker := newTestRequestService()
	checker.On("IsUserExistsForStrictCheck", mock.Anything, bookerID).Return(nil)
	repo.On("GetRequestsByRequestor", mock.Anything, bookerID).
		Return([]*models.ItemRequest{{ID: 2}, {ID: 1}}, nil)
	checker.On("GetItemsByRequestID", mock.Anything, int64(2)).Return([]*models.Item{{ID: 7}}, nil)
	checker.On("GetItemsByRequestID", mock.Anything, int64(1)).Return(nil, nil)

	requests, err := s.GetOwnRequests(context.Background(), bookerID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Len(t, requests[0].Items, 1)
	assert.NotNil(t, requests[1].Items)
	assert.Empty(t, requests[1].Items)
}

func TestRequestService_GetOtherRequests(t *testing.T) {
	s, repo, checker := newTestRequestService()
	checker.On("IsUserExistsForStrictCheck", mock.Anything, bookerID).Return(nil)
	repo.On("GetRequestsExcept", mock.Anything, bookerID, models.Page{Index: 0, Size: 1}).
		Return([]*models.ItemRequest{{ID: 3}}, true, nil)
	checker.On("GetItemsByRequestID", mock.Anything, int64(3)).Return([]*models.Item{}, nil)

	requests, err := s.GetOtherRequests(context.Background(), bookerID, 0, intPtr(1))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, int64(3), requests[0].ID)

	_, err = s.GetOtherRequests(context.Background(), bookerID, 0, intPtr(0))
	assert.ErrorIs(t, err, errs.ErrValidation)
}
