package models

type User struct {
	ID    int64  `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name" validate:"notblank"`
	Email string `json:"email" yaml:"email" validate:"notblank,email"`
}

// UserUpdate carries a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Name  *string `json:"name" validate:"omitnil,notblank"`
	Email *string `json:"email" validate:"omitnil,notblank,email"`
}
