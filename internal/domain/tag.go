package domain

import "time"

// Tag is a named grouping with an optional notification email. Names are
// not required to be unique; duplicate recipients are acceptable downstream.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
