package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner")

	item := &models.Item{Name: "Drill", Description: "Cordless drill", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, item))
	assert.NotZero(t, item.ID)

	found, err := db.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, found)
	assert.Nil(t, found.RequestID)

	item.Available = false
	item.Description = "Broken drill"
	require.NoError(t, db.UpdateItem(ctx, item))
	found, err = db.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, found.Available)
	assert.Equal(t, "Broken drill", found.Description)

	require.NoError(t, db.DeleteItem(ctx, item.ID))
	_, err = db.GetItemByID(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteItem(ctx, item.ID), ErrNotFound)
	assert.ErrorIs(t, db.UpdateItem(ctx, item), ErrNotFound)
}

func TestCreateItem_UnknownOwner(t *testing.T) {
	db := setupTestDB(t)
	err := db.CreateItem(context.Background(), &models.Item{Name: "x", Description: "y", OwnerID: 42})
	assert.Error(t, err)
}

func TestGetItemsByOwner_Paging(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")

	var ids []int64
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, createTestItem(t, db, owner, name, true).ID)
	}
	createTestItem(t, db, other, "foreign", true)

	page, hasNext, err := db.GetItemsByOwner(ctx, owner.ID, models.Page{Index: 0, Size: 2})
	require.NoError(t, err)
	assert.True(t, hasNext)
	require.Len(t, page, 2)
	assert.Equal(t, ids[0], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	page, hasNext, err = db.GetItemsByOwner(ctx, owner.ID, models.Page{Index: 2, Size: 2})
	require.NoError(t, err)
	assert.False(t, hasNext)
	require.Len(t, page, 1)
	assert.Equal(t, ids[4], page[0].ID)

	page, hasNext, err = db.GetItemsByOwner(ctx, owner.ID, models.Page{Index: 0, Size: 5})
	require.NoError(t, err)
	assert.False(t, hasNext)
	assert.Len(t, page, 5)

	page, hasNext, err = db.GetItemsByOwner(ctx, 999, models.Page{Index: 0, Size: 5})
	require.NoError(t, err)
	assert.False(t, hasNext)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestSearchItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner")

	drill := &models.Item{Name: "Power DRILL", Description: "makes holes", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, drill))
	saw := &models.Item{Name: "Saw", Description: "Sharp, like a drill bit", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, saw))
	hidden := &models.Item{Name: "Old drill", Description: "unavailable", Available: false, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, hidden))
	percent := &models.Item{Name: "100% cotton tent", Description: "tent", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, percent))

	tests := []struct {
		name string
		text string
		want []int64
	}{
		{"name and description, ignoring case", "dRiLl", []int64{drill.ID, saw.ID}},
		{"description only", "holes", []int64{drill.ID}},
		{"no match", "hammer", nil},
		{"like wildcard is literal", "%", []int64{percent.ID}},
		{"underscore is literal", "_", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, hasNext, err := db.SearchItems(ctx, tt.text, models.Page{Size: 10})
			require.NoError(t, err)
			assert.False(t, hasNext)

			var got []int64
			for _, item := range items {
				got = append(got, item.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestItemsByRequest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	requestor := createTestUser(t, db, "requestor")
	owner := createTestUser(t, db, "owner")

	request := &models.ItemRequest{Description: "need a ladder", RequestorID: requestor.ID, Created: fixedNow}
	require.NoError(t, db.CreateRequest(ctx, request))

	first := &models.Item{Name: "Ladder", Description: "3m", Available: true, OwnerID: owner.ID, RequestID: &request.ID}
	require.NoError(t, db.CreateItem(ctx, first))
	second := &models.Item{Name: "Step ladder", Description: "1m", Available: true, OwnerID: owner.ID, RequestID: &request.ID}
	require.NoError(t, db.CreateItem(ctx, second))
	createTestItem(t, db, owner, "unrelated", true)

	items, err := db.GetItemsByRequestID(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
	require.NotNil(t, items[0].RequestID)
	assert.Equal(t, request.ID, *items[0].RequestID)
}

func TestDeleteItemsByOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")

	createTestItem(t, db, owner, "a", true)
	createTestItem(t, db, owner, "b", false)
	kept := createTestItem(t, db, other, "c", true)

	deleted, err := db.DeleteItemsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = db.GetItemByID(ctx, kept.ID)
	assert.NoError(t, err)

	deleted, err = db.DeleteItemsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\ ok`, escapeLike(`50% off_now \ ok`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
