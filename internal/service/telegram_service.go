package service

import (
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const notifyTimeLayout = "2006-01-02 15:04"

// TelegramService posts booking events to an operations chat.
type TelegramService struct {
	bot    domain.TelegramSender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramService(bot domain.TelegramSender, chatID int64, logger *zerolog.Logger) *TelegramService {
	return &TelegramService{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}
}

func (s *TelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return s.bot.Send(msg)
}

// Attach subscribes the service to every booking event on the bus.
func (s *TelegramService) Attach(bus *events.EventBus) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingApproved,
		events.EventBookingRejected,
		events.EventBookingCanceled,
	} {
		bus.Subscribe(eventType, s.HandleBookingEvent)
	}
}

func (s *TelegramService) HandleBookingEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := event.Decode(&payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode booking event")
		return err
	}

	if _, err := s.SendMessage(s.chatID, formatBookingEvent(event.Type, payload)); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", payload.BookingID).Msg("telegram notify error")
		return err
	}
	return nil
}

func formatBookingEvent(eventType string, p events.BookingEventPayload) string {
	var headline string
	switch eventType {
	case events.EventBookingCreated:
		headline = "New booking"
	case events.EventBookingApproved:
		headline = "Booking approved"
	case events.EventBookingRejected:
		headline = "Booking rejected"
	case events.EventBookingCanceled:
		headline = "Booking canceled"
	default:
		headline = eventType
	}

	return fmt.Sprintf("%s #%d\nItem: %s (#%d)\nBooker: %s (#%d)\nPeriod: %s - %s UTC\nStatus: %s",
		headline, p.BookingID,
		p.ItemName, p.ItemID,
		p.BookerName, p.BookerID,
		p.Start.UTC().Format(notifyTimeLayout), p.End.UTC().Format(notifyTimeLayout),
		p.Status,
	)
}
