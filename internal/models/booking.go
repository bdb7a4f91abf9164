package models

import (
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

// IsFinal reports whether no owner decision can follow this status.
func (s BookingStatus) IsFinal() bool {
	return s != StatusWaiting
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// BookingState is the listing filter accepted by the bookings endpoints.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState matches state names exactly; an empty value means ALL.
func ParseBookingState(raw string) (BookingState, bool) {
	if raw == "" {
		return StateAll, true
	}
	switch state := BookingState(raw); state {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, true
	}
	return "", false
}

type BookingItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"-"`
}

type BookingUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Booking struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
	Item   BookingItem   `json:"item"`
	Booker BookingUser   `json:"booker"`
}

// Short returns the projection shown on item cards.
func (b *Booking) Short() *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{
		ID:       b.ID,
		BookerID: b.Booker.ID,
		Start:    b.Start,
		End:      b.End,
	}
}

// BookingCreate is the input of a new booking.
type BookingCreate struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

type BookingShort struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// BookingFilter selects bookings by participant and state. Exactly one of
// BookerID and OwnerID is expected to be set.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    BookingState
	Now      time.Time
}

// Page addresses one page of a sorted result set.
type Page struct {
	Index int
	Size  int
}

func (p Page) Offset() int {
	return p.Index * p.Size
}
