package models

import "time"

type Comment struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text" validate:"notblank"`
	ItemID     int64     `json:"itemId"`
	AuthorID   int64     `json:"-"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}
