package models

type Item struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name" validate:"notblank"`
	Description string `json:"description" yaml:"description" validate:"notblank"`
	Available   bool   `json:"available" yaml:"available"`
	OwnerID     int64  `json:"-" yaml:"owner_id"`
	RequestID   *int64 `json:"requestId,omitempty" yaml:"request_id" validate:"omitnil,gt=0"`
}

// ItemUpdate carries a partial update; nil fields are left unchanged.
type ItemUpdate struct {
	Name        *string `json:"name" validate:"omitnil,notblank"`
	Description *string `json:"description" validate:"omitnil,notblank"`
	Available   *bool   `json:"available"`
}

// ItemView is an item card with its booking neighbours and comments.
// Booking fields are filled only for the owner.
type ItemView struct {
	Item
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []*Comment    `json:"comments"`
}
