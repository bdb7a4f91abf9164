package models

import "time"

type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description" validate:"notblank"`
	RequestorID int64     `json:"requestorId"`
	Created     time.Time `json:"created"`
	Items       []*Item   `json:"items"`
}
