package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRequest(t *testing.T, db *DB, requestor *models.User, description string, created time.Time) *models.ItemRequest {
	t.Helper()
	request := &models.ItemRequest{Description: description, RequestorID: requestor.ID, Created: created}
	require.NoError(t, db.CreateRequest(context.Background(), request))
	return request
}

func TestRequestCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "requestor")

	request := createTestRequest(t, db, user, "need a tent", fixedNow)
	assert.NotZero(t, request.ID)

	found, err := db.GetRequestByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "need a tent", found.Description)
	assert.Equal(t, user.ID, found.RequestorID)
	assert.True(t, found.Created.Equal(fixedNow))

	_, err = db.GetRequestByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRequestsByRequestor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "requestor")
	other := createTestUser(t, db, "other")

	older := createTestRequest(t, db, user, "older", fixedNow.Add(-time.Hour))
	newer := createTestRequest(t, db, user, "newer", fixedNow)
	createTestRequest(t, db, other, "foreign", fixedNow)

	requests, err := db.GetRequestsByRequestor(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, newer.ID, requests[0].ID)
	assert.Equal(t, older.ID, requests[1].ID)

	requests, err = db.GetRequestsByRequestor(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestGetRequestsExcept(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "user")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestRequest(t, db, user, "own", fixedNow)
	a := createTestRequest(t, db, alice, "alice's", fixedNow.Add(-2*time.Hour))
	b := createTestRequest(t, db, bob, "bob's", fixedNow.Add(-time.Hour))

	page, hasNext, err := db.GetRequestsExcept(ctx, user.ID, models.Page{Index: 0, Size: 1})
	require.NoError(t, err)
	assert.True(t, hasNext)
	require.Len(t, page, 1)
	assert.Equal(t, b.ID, page[0].ID)

	page, hasNext, err = db.GetRequestsExcept(ctx, user.ID, models.Page{Index: 1, Size: 1})
	require.NoError(t, err)
	assert.False(t, hasNext)
	require.Len(t, page, 1)
	assert.Equal(t, a.ID, page[0].ID)
}
