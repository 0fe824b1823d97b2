package models

import "time"

// Session holds per-visitor state keyed by the session cookie.
type Session struct {
	Key       string    `json:"key" db:"key"`
	NumVisits int       `json:"num_visits" db:"num_visits"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
