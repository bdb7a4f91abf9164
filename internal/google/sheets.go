package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"shareit/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	bookingsSheet = "Bookings"
	statusColumn  = "H"
	lastColumn    = "I"
	timeLayout    = "2006-01-02 15:04"
)

var errRowNotFound = errors.New("booking row not found")

// SheetsService mirrors bookings into a Google spreadsheet, one row per booking.
type SheetsService struct {
	service         *sheets.Service
	bookingsSheetID string

	rowCache map[int64]int
	cacheMu  sync.RWMutex
	now      func() time.Time
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsService, error) {
	credentials, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return newSheetsService(srv, spreadsheetID), nil
}

func newSheetsService(srv *sheets.Service, spreadsheetID string) *SheetsService {
	return &SheetsService{
		service:         srv,
		bookingsSheetID: spreadsheetID,
		rowCache:        make(map[int64]int),
		now:             time.Now,
	}
}

func (s *SheetsService) TestConnection(ctx context.Context) error {
	if _, err := s.service.Spreadsheets.Get(s.bookingsSheetID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to access bookings spreadsheet: %w", err)
	}
	return nil
}

// WarmUpCache loads booking id to row mappings from the id column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, bookingsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to read booking ids: %w", err)
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := cellID(row[0]); ok {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

func (s *SheetsService) AppendBooking(ctx context.Context, booking *models.Booking) error {
	values := &sheets.ValueRange{Values: [][]interface{}{s.bookingRowValues(booking)}}

	resp, err := s.service.Spreadsheets.Values.Append(s.bookingsSheetID, bookingsSheet+"!A:"+lastColumn, values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to append booking: %w", err)
	}

	if resp.Updates != nil {
		if row, ok := rowFromRange(resp.Updates.UpdatedRange); ok {
			s.cacheRow(booking.ID, row)
		}
	}
	return nil
}

// UpsertBooking rewrites the booking row in place, appending when there is none.
func (s *SheetsService) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	row, err := s.FindBookingRow(ctx, booking.ID)
	if errors.Is(err, errRowNotFound) {
		return s.AppendBooking(ctx, booking)
	}
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:%s%d", bookingsSheet, row, lastColumn, row)
	values := &sheets.ValueRange{Values: [][]interface{}{s.bookingRowValues(booking)}}
	_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rng, values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to update booking row: %w", err)
	}
	return nil
}

// UpdateBookingStatus touches only the status and updated-at cells.
func (s *SheetsService) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	row, err := s.FindBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!%s%d:%s%d", bookingsSheet, statusColumn, row, lastColumn, row)
	values := &sheets.ValueRange{Values: [][]interface{}{{status, s.now().UTC().Format(timeLayout)}}}
	_, err = s.service.Spreadsheets.Values.Update(s.bookingsSheetID, rng, values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to update booking status: %w", err)
	}
	return nil
}

// FindBookingRow returns the 1-based sheet row holding the booking.
func (s *SheetsService) FindBookingRow(ctx context.Context, bookingID int64) (int, error) {
	s.cacheMu.RLock()
	row, ok := s.rowCache[bookingID]
	s.cacheMu.RUnlock()
	if ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.bookingsSheetID, bookingsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to read booking ids: %w", err)
	}

	for i, r := range resp.Values {
		if len(r) == 0 {
			continue
		}
		if id, ok := cellID(r[0]); ok && id == bookingID {
			s.cacheRow(bookingID, i+1)
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("booking %d: %w", bookingID, errRowNotFound)
}

func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	s.rowCache = make(map[int64]int)
	s.cacheMu.Unlock()
}

func (s *SheetsService) cacheRow(bookingID int64, row int) {
	s.cacheMu.Lock()
	s.rowCache[bookingID] = row
	s.cacheMu.Unlock()
}

func (s *SheetsService) bookingRowValues(b *models.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.Booker.ID,
		b.Booker.Name,
		b.Item.ID,
		b.Item.Name,
		b.Start.UTC().Format(timeLayout),
		b.End.UTC().Format(timeLayout),
		string(b.Status),
		s.now().UTC().Format(timeLayout),
	}
}

// cellID accepts both numeric and text cells.
func cellID(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		return id, err == nil
	}
	return 0, false
}

// rowFromRange extracts the first row number from ranges like "Bookings!A10:I10".
func rowFromRange(rng string) (int, bool) {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	if i := strings.Index(rng, ":"); i >= 0 {
		rng = rng[:i]
	}
	digits := strings.TrimLeft(rng, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	row, err := strconv.Atoi(digits)
	if err != nil || row <= 0 {
		return 0, false
	}
	return row, true
}
