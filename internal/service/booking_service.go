package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/errs"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const (
	syncTaskUpsert       = "upsert"
	syncTaskUpdateStatus = "update_status"
)

type BookingService struct {
	repo         domain.BookingRepository
	tx           domain.Transactor
	checker      domain.Checker
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
	now          func() time.Time
}

// NewBookingService builds the booking engine. eventBus and sheetsWorker may be nil.
func NewBookingService(
	repo domain.BookingRepository,
	tx domain.Transactor,
	checker domain.Checker,
	eventBus domain.EventPublisher,
	sheetsWorker domain.SyncWorker,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		tx:           tx,
		checker:      checker,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, input models.BookingCreate) (*models.Booking, error) {
	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checker.IsUserExistsForStrictCheck(ctx, bookerID); err != nil {
			return err
		}

		available, err := s.checker.IsAvailableItem(ctx, input.ItemID)
		if err != nil {
			return err
		}
		if !available {
			return errs.Validation("item unavailable")
		}

		own, err := s.checker.IsItemOwner(ctx, input.ItemID, bookerID)
		if err != nil {
			return err
		}
		if own {
			return errs.Validation("cannot book own item")
		}

		created := &models.Booking{
			Start:  input.Start,
			End:    input.End,
			Status: models.StatusWaiting,
			Item:   models.BookingItem{ID: input.ItemID},
			Booker: models.BookingUser{ID: bookerID},
		}
		if err := s.repo.CreateBooking(ctx, created); err != nil {
			return err
		}

		booking, err = s.repo.GetBookingByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", booking.Item.ID).Int64("booker_id", bookerID).Msg("booking created")
	metrics.IncBookingTransition(string(booking.Status))
	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	s.enqueueSync(ctx, booking, syncTaskUpsert)
	return booking, nil
}

// UpdateBooking moves a booking to its next status on behalf of userID.
// The booker may only cancel; the owner approves or rejects a waiting booking.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID, userID int64, approved bool) (*models.Booking, error) {
	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checker.IsUserExistsForValidation(ctx, userID); err != nil {
			return err
		}

		current, err := s.findBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		next, err := s.nextStatus(current, userID, approved)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateBookingStatus(ctx, bookingID, next); err != nil {
			return err
		}
		current.Status = next
		booking = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", bookingID).Int64("user_id", userID).Str("status", string(booking.Status)).Msg("booking status changed")
	metrics.IncBookingTransition(string(booking.Status))
	s.publishEvent(eventForStatus(booking.Status), booking, userID)
	s.enqueueSync(ctx, booking, syncTaskUpdateStatus)
	return booking, nil
}

func (s *BookingService) nextStatus(b *models.Booking, userID int64, approved bool) (models.BookingStatus, error) {
	if b.End.Before(s.now()) {
		return "", errs.Validation("booking time expired")
	}

	switch {
	case b.Booker.ID == userID:
		if approved {
			return "", errs.Validation("only owner may approve")
		}
		return models.StatusCanceled, nil

	case b.Item.OwnerID == userID && b.Status != models.StatusCanceled:
		if b.Status != models.StatusWaiting {
			return "", errs.Validation("decision already made")
		}
		if approved {
			return models.StatusApproved, nil
		}
		return models.StatusRejected, nil

	case b.Status == models.StatusCanceled:
		return "", errs.Validation("booking was canceled")

	default:
		return "", errs.Validation("only owner may approve")
	}
}

// GetBooking returns the booking if userID is its booker or the item owner.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
		return nil, err
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Booker.ID != userID && booking.Item.OwnerID != userID {
		return nil, errs.Validation("only owner or booker may view")
	}
	return booking, nil
}

// GetBookings lists the bookings made by userID, newest start first.
func (s *BookingService) GetBookings(ctx context.Context, userID int64, state string, from int, size *int) ([]*models.Booking, error) {
	return s.list(ctx, userID, state, from, size, func(st models.BookingState) models.BookingFilter {
		return models.BookingFilter{BookerID: userID, State: st, Now: s.now()}
	})
}

// GetOwnerBookings lists the bookings of items owned by userID, newest start first.
func (s *BookingService) GetOwnerBookings(ctx context.Context, userID int64, state string, from int, size *int) ([]*models.Booking, error) {
	return s.list(ctx, userID, state, from, size, func(st models.BookingState) models.BookingFilter {
		return models.BookingFilter{OwnerID: userID, State: st, Now: s.now()}
	})
}

func (s *BookingService) list(
	ctx context.Context,
	userID int64,
	rawState string,
	from int,
	size *int,
	filterFor func(models.BookingState) models.BookingFilter,
) ([]*models.Booking, error) {
	if err := s.checker.IsUserExistsForStrictCheck(ctx, userID); err != nil {
		return nil, err
	}

	state, ok := models.ParseBookingState(rawState)
	if !ok {
		return nil, errs.Validation("Unknown state: %s", rawState)
	}

	filter := filterFor(state)
	return Paginate(ctx, from, size, func(ctx context.Context, page models.Page) ([]*models.Booking, bool, error) {
		return s.repo.FindBookings(ctx, filter, page)
	})
}

func (s *BookingService) LastBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	return s.repo.GetLastBooking(ctx, itemID, s.now())
}

func (s *BookingService) NextBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	return s.repo.GetNextBooking(ctx, itemID, s.now())
}

// CompletedBooking returns an approved, finished booking of the item by userID, or nil.
func (s *BookingService) CompletedBooking(ctx context.Context, itemID, userID int64) (*models.Booking, error) {
	return s.repo.GetCompletedBooking(ctx, itemID, userID, s.now())
}

func (s *BookingService) findBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errs.NotFound("booking %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		BookerID:    booking.Booker.ID,
		BookerName:  booking.Booker.Name,
		ItemID:      booking.Item.ID,
		ItemName:    booking.Item.Name,
		OwnerID:     booking.Item.OwnerID,
		Status:      string(booking.Status),
		Start:       booking.Start,
		End:         booking.End,
		ChangedByID: changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}

func eventForStatus(status models.BookingStatus) string {
	switch status {
	case models.StatusApproved:
		return events.EventBookingApproved
	case models.StatusRejected:
		return events.EventBookingRejected
	default:
		return events.EventBookingCanceled
	}
}
