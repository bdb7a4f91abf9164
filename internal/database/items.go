package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var itemColumns = []string{"id", "name", "description", "available", "owner_id", "request_id"}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, available, owner_id, request_id) VALUES (?, ?, ?, ?, ?)`
	result, err := db.conn(ctx).ExecContext(ctx, query,
		item.Name,
		item.Description,
		item.Available,
		item.OwnerID,
		nullInt64(item.RequestID),
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	query, args, err := sq.Select(itemColumns...).From("items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build item query: %w", err)
	}

	item, err := scanItem(db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`
	result, err := db.conn(ctx).ExecContext(ctx, query, item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return expectAffected(result)
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.conn(ctx).ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return expectAffected(result)
}

func (db *DB) DeleteItemsByOwner(ctx context.Context, ownerID int64) (int64, error) {
	result, err := db.conn(ctx).ExecContext(ctx, `DELETE FROM items WHERE owner_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete items of owner: %w", err)
	}
	return result.RowsAffected()
}

// GetItemsByOwner returns one page of the owner's items ordered by id and
// whether another page follows.
func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, bool, error) {
	q := sq.Select(itemColumns...).
		From("items").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("id ASC")
	return db.queryItemPage(ctx, q, page)
}

// SearchItems matches available items whose name or description contains text, ignoring case.
func (db *DB) SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, bool, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	q := sq.Select(itemColumns...).
		From("items").
		Where(sq.Eq{"available": true}).
		Where(sq.Or{
			sq.Expr(`LOWER(name) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(description) LIKE ? ESCAPE '\'`, pattern),
		}).
		OrderBy("id ASC")
	return db.queryItemPage(ctx, q, page)
}

func (db *DB) GetItemsByRequestID(ctx context.Context, requestID int64) ([]*models.Item, error) {
	q := sq.Select(itemColumns...).
		From("items").
		Where(sq.Eq{"request_id": requestID}).
		OrderBy("id DESC")
	items, err := db.queryItems(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get items by request: %w", err)
	}
	return items, nil
}

func (db *DB) queryItemPage(ctx context.Context, q sq.SelectBuilder, page models.Page) ([]*models.Item, bool, error) {
	q = q.Limit(uint64(page.Size + 1)).Offset(uint64(page.Offset()))
	items, err := db.queryItems(ctx, q)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get items page: %w", err)
	}
	if len(items) > page.Size {
		return items[:page.Size], true, nil
	}
	return items, false, nil
}

func (db *DB) queryItems(ctx context.Context, q sq.SelectBuilder) ([]*models.Item, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item      models.Item
		requestID sql.NullInt64
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Available, &item.OwnerID, &requestID); err != nil {
		return nil, err
	}
	if requestID.Valid {
		id := requestID.Int64
		item.RequestID = &id
	}
	return &item, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
