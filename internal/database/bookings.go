package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"

	sq "github.com/Masterminds/squirrel"
)

var bookingColumns = []string{
	"b.id", "b.start_time", "b.end_time", "b.status",
	"i.id", "i.name", "i.owner_id",
	"u.id", "u.name",
}

func bookingSelect() sq.SelectBuilder {
	return sq.Select(bookingColumns...).
		From("bookings b").
		Join("items i ON i.id = b.item_id").
		Join("users u ON u.id = b.booker_id")
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_time, end_time, item_id, booker_id, status, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.conn(ctx).ExecContext(ctx, query,
		booking.Start.UTC(),
		booking.End.UTC(),
		booking.Item.ID,
		booking.Booker.ID,
		string(booking.Status),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := db.queryBooking(ctx, bookingSelect().Where(sq.Eq{"b.id": id}))
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.conn(ctx).ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return expectAffected(result)
}

// FindBookings returns one page of bookings matching filter, newest start first,
// and whether another page follows.
func (db *DB) FindBookings(ctx context.Context, filter models.BookingFilter, page models.Page) ([]*models.Booking, bool, error) {
	q := bookingSelect()
	if filter.BookerID != 0 {
		q = q.Where(sq.Eq{"b.booker_id": filter.BookerID})
	}
	if filter.OwnerID != 0 {
		q = q.Where(sq.Eq{"i.owner_id": filter.OwnerID})
	}

	now := filter.Now.UTC()
	switch filter.State {
	case models.StateCurrent:
		q = q.Where(sq.Lt{"b.start_time": now}).Where(sq.Gt{"b.end_time": now})
	case models.StatePast:
		q = q.Where(sq.Lt{"b.end_time": now})
	case models.StateFuture:
		q = q.Where(sq.Gt{"b.start_time": now})
	case models.StateWaiting:
		q = q.Where(sq.Eq{"b.status": string(models.StatusWaiting)})
	case models.StateRejected:
		q = q.Where(sq.Eq{"b.status": string(models.StatusRejected)})
	}

	q = q.OrderBy("b.start_time DESC", "b.id DESC").
		Limit(uint64(page.Size + 1)).
		Offset(uint64(page.Offset()))

	bookings, err := db.queryBookings(ctx, q)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find bookings: %w", err)
	}
	if len(bookings) > page.Size {
		return bookings[:page.Size], true, nil
	}
	return bookings, false, nil
}

// GetLastBooking returns the item's booking that ended most recently before now, or nil.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	q := bookingSelect().
		Where(sq.Eq{"b.item_id": itemID}).
		Where(sq.Lt{"b.end_time": now.UTC()}).
		OrderBy("b.end_time DESC").
		Limit(1)
	booking, err := db.queryBooking(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return booking, nil
}

// GetNextBooking returns the item's booking starting soonest after now, or nil.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	q := bookingSelect().
		Where(sq.Eq{"b.item_id": itemID}).
		Where(sq.Gt{"b.start_time": now.UTC()}).
		OrderBy("b.start_time ASC").
		Limit(1)
	booking, err := db.queryBooking(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return booking, nil
}

// GetCompletedBooking returns an approved booking of the item by booker that ended before now, or nil.
func (db *DB) GetCompletedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (*models.Booking, error) {
	q := bookingSelect().
		Where(sq.Eq{
			"b.item_id":   itemID,
			"b.booker_id": bookerID,
			"b.status":    string(models.StatusApproved),
		}).
		Where(sq.Lt{"b.end_time": now.UTC()}).
		OrderBy("b.end_time DESC").
		Limit(1)
	booking, err := db.queryBooking(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed booking: %w", err)
	}
	return booking, nil
}

func (db *DB) queryBooking(ctx context.Context, q sq.SelectBuilder) (*models.Booking, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	booking, err := scanBooking(db.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return booking, err
}

func (db *DB) queryBookings(ctx context.Context, q sq.SelectBuilder) ([]*models.Booking, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b      models.Booking
		status string
	)
	err := row.Scan(
		&b.ID, &b.Start, &b.End, &status,
		&b.Item.ID, &b.Item.Name, &b.Item.OwnerID,
		&b.Booker.ID, &b.Booker.Name,
	)
	if err != nil {
		return nil, err
	}
	b.Status = models.BookingStatus(status)
	return &b, nil
}
