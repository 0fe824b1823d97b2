package models

// Genre is a free-text category label such as "Science Fiction".
type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
