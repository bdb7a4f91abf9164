package service

import (
	"strings"
	"testing"
	"time"

	"shareit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func TestTelegramService(t *testing.T) {
	logger := zerolog.Nop()
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender, 123, &logger)

	t.Run("SendMessage", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.Text == "hello" && msg.ChatID == 456
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.SendMessage(456, "hello")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("BookingEvent", func(t *testing.T) {
		bus := events.NewEventBus()
		svc.Attach(bus)

		var sent string
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.ChatID == 123
		})).Run(func(args mock.Arguments) {
			sent = args.Get(0).(tgbotapi.MessageConfig).Text
		}).Return(tgbotapi.Message{}, nil).Once()

		start := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)
		require.NoError(t, bus.PublishJSON(events.EventBookingApproved, events.BookingEventPayload{
			BookingID: 10, ItemID: 5, ItemName: "kayak", BookerID: 2, BookerName: "booker",
			Status: "APPROVED", Start: start, End: start.Add(48 * time.Hour),
		}))

		mockSender.AssertExpectations(t)
		assert.True(t, strings.HasPrefix(sent, "Booking approved #10"))
		assert.Contains(t, sent, "Item: kayak (#5)")
		assert.Contains(t, sent, "Period: 2024-06-20 09:00 - 2024-06-22 09:00 UTC")
	})

	t.Run("SendError", func(t *testing.T) {
		mockSender.On("Send", mock.Anything).Return(tgbotapi.Message{}, assert.AnError).Once()

		err := svc.HandleBookingEvent(&events.Event{Type: events.EventBookingCanceled, Payload: []byte(`{"booking_id":1}`)})
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("BadPayload", func(t *testing.T) {
		err := svc.HandleBookingEvent(&events.Event{Type: events.EventBookingCreated, Payload: []byte(`{`)})
		assert.Error(t, err)
	})
}
