package models

import "math"

// DefaultPageSize matches the page size of every catalog listing.
const DefaultPageSize = 10

// MaxPageNumber keeps Offset well inside Postgres' bigint range.
const MaxPageNumber = math.MaxInt32 / DefaultPageSize

// Page selects one page of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// NewPage returns a page with out-of-range values clamped to sane defaults.
func NewPage(number int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	return Page{Number: number, Size: DefaultPageSize}
}

func (p Page) Limit() uint {
	return uint(p.Size)
}

func (p Page) Offset() uint {
	return uint((p.Number - 1) * p.Size)
}

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// CalculateMetadata computes page metadata from a total record count.
func CalculateMetadata(totalRecords int, page Page) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page.Number,
		PageSize:     page.Size,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(page.Size))),
		TotalRecords: totalRecords,
	}
}
