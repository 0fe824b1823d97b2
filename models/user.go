package models

import "time"

// User is an actor identity: a borrower, a librarian, or both.
type User struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Capabilities []string  `json:"capabilities"`
}
