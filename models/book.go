package models

import "strings"

// displayLimit caps how many related names the short display helpers render.
const displayLimit = 3

// Book is a catalog entry. It is not lendable itself; BookCopy is.
type Book struct {
	ID         int64    `json:"id" db:"id"`
	Title      string   `json:"title" db:"title"`
	Summary    string   `json:"summary" db:"summary"`
	ISBN       string   `json:"isbn" db:"isbn"`
	LanguageID *int64   `json:"language_id,omitempty" db:"language_id"`
	Authors    []Author `json:"authors" db:"-"`
	Genres     []Genre  `json:"genres" db:"-"`
}

// BookFilter narrows book listings. Empty fields do not filter.
type BookFilter struct {
	Genre string // exact genre name, case-insensitive
	Title string // substring of the title, case-insensitive
}

// DisplayAuthor joins the last names of the first three authors.
func (b Book) DisplayAuthor() string {
	names := make([]string, 0, displayLimit)
	for i, a := range b.Authors {
		if i == displayLimit {
			break
		}
		names = append(names, a.LastName)
	}
	return strings.Join(names, ", ")
}

// DisplayGenre joins the names of the first three genres.
func (b Book) DisplayGenre() string {
	names := make([]string, 0, displayLimit)
	for i, g := range b.Genres {
		if i == displayLimit {
			break
		}
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// AllAuthors joins every author as "First Last".
func (b Book) AllAuthors() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.FullName())
	}
	return strings.Join(names, ", ")
}

func (b Book) String() string {
	return b.Title
}
