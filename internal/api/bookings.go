package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"shareit/internal/errs"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/validate"
)

// Timestamps without a zone are read as UTC.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// flexTime accepts RFC 3339 or a zone-less ISO local date-time.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid time: %s", raw)
}

func init() {
	validate.RegisterType(func(field reflect.Value) any {
		return field.Interface().(flexTime).Time
	}, flexTime{})
}

type bookingRequest struct {
	ItemID int64    `json:"itemId" validate:"required,gt=0"`
	Start  flexTime `json:"start" validate:"required"`
	End    flexTime `json:"end" validate:"required"`
}

// checkWindow runs after decodeJSON has validated the field tags.
func (b bookingRequest) checkWindow() error {
	if !b.Start.Before(b.End.Time) {
		return errs.Validation("start must be before end")
	}
	return nil
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var body bookingRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := body.checkWindow(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.CreateBooking(r.Context(), userID, models.BookingCreate{
		ItemID: body.ItemID,
		Start:  body.Start.Time,
		End:    body.End.Time,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	raw := r.URL.Query().Get("approved")
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		s.writeServiceError(w, r, errs.Validation("invalid approved: %q", raw))
		return
	}

	booking, err := s.services.Bookings.UpdateBooking(r.Context(), bookingID, userID, approved)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.GetBooking(r.Context(), bookingID, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.services.Bookings.GetBookings)
}

func (s *HTTPServer) handleGetOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.services.Bookings.GetOwnerBookings)
}

type bookingLister func(ctx context.Context, userID int64, state string, from int, size *int) ([]*models.Booking, error)

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	from, size, err := paging(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	bookings, err := list(r.Context(), userID, r.URL.Query().Get("state"), from, size)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// handleExportOwnerBookings streams the owner's bookings in the given state as xlsx.
func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	state, ok := models.ParseBookingState(r.URL.Query().Get("state"))
	if !ok {
		s.writeServiceError(w, r, errs.Validation("Unknown state: %s", r.URL.Query().Get("state")))
		return
	}

	bookings, err := s.services.Bookings.GetOwnerBookings(r.Context(), userID, string(state), 0, nil)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("Bookings of owner #%d, state %s", userID, state)
	if err := export.WriteBookings(&buf, title, bookings); err != nil {
		s.writeServiceError(w, r, fmt.Errorf("export owner bookings: %w", err))
		return
	}

	name := export.FileName(userID, string(state), s.now())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
