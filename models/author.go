package models

import "fmt"

type Author struct {
	ID          int64  `json:"id" db:"id"`
	FirstName   string `json:"first_name" db:"first_name"`
	LastName    string `json:"last_name" db:"last_name"`
	DateOfBirth *Date  `json:"date_of_birth,omitempty" db:"date_of_birth"`
	DateOfDeath *Date  `json:"date_of_death,omitempty" db:"date_of_death"`
}

// String renders the author the way catalog listings show them: "Last, First".
func (a Author) String() string {
	return fmt.Sprintf("%s, %s", a.LastName, a.FirstName)
}

// FullName renders the author as "First Last".
func (a Author) FullName() string {
	return a.FirstName + " " + a.LastName
}
