package models

// Language is the natural language a book is written in.
type Language struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
