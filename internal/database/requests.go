package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/models"

	sq "github.com/Masterminds/squirrel"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO item_requests (description, requestor_id, created) VALUES (?, ?, ?)`
	result, err := db.conn(ctx).ExecContext(ctx, query, request.Description, request.RequestorID, request.Created.UTC())
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var r models.ItemRequest
	err := db.conn(ctx).QueryRowContext(ctx,
		`SELECT id, description, requestor_id, created FROM item_requests WHERE id = ?`, id).
		Scan(&r.ID, &r.Description, &r.RequestorID, &r.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item request: %w", err)
	}
	return &r, nil
}

// GetRequestsByRequestor returns the user's own requests, newest first.
func (db *DB) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	q := sq.Select("id", "description", "requestor_id", "created").
		From("item_requests").
		Where(sq.Eq{"requestor_id": requestorID}).
		OrderBy("created DESC", "id DESC")
	requests, err := db.queryRequests(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get own item requests: %w", err)
	}
	return requests, nil
}

// GetRequestsExcept returns one page of other users' requests, newest first.
func (db *DB) GetRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, bool, error) {
	q := sq.Select("id", "description", "requestor_id", "created").
		From("item_requests").
		Where(sq.NotEq{"requestor_id": userID}).
		OrderBy("created DESC", "id DESC").
		Limit(uint64(page.Size + 1)).
		Offset(uint64(page.Offset()))
	requests, err := db.queryRequests(ctx, q)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get item requests: %w", err)
	}
	if len(requests) > page.Size {
		return requests[:page.Size], true, nil
	}
	return requests, false, nil
}

func (db *DB) queryRequests(ctx context.Context, q sq.SelectBuilder) ([]*models.ItemRequest, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*models.ItemRequest, 0)
	for rows.Next() {
		var r models.ItemRequest
		if err := rows.Scan(&r.ID, &r.Description, &r.RequestorID, &r.Created); err != nil {
			return nil, err
		}
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}
