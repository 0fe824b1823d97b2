package models

import "strings"

// CopyStatus defines the set of allowed statuses for a BookCopy.
type CopyStatus string

const (
	CopyStatusMaintenance CopyStatus = "maintenance"
	CopyStatusOnLoan      CopyStatus = "on_loan"
	CopyStatusAvailable   CopyStatus = "available"
	CopyStatusReserved    CopyStatus = "reserved"
)

// DefaultCopyStatus is the status every new copy starts in.
const DefaultCopyStatus = CopyStatusMaintenance

// IsValidCopyStatus checks if the provided string is a valid CopyStatus.
func IsValidCopyStatus(statusStr string) (CopyStatus, bool) {
	s := CopyStatus(strings.ToLower(statusStr))
	switch s {
	case CopyStatusMaintenance, CopyStatusOnLoan, CopyStatusAvailable, CopyStatusReserved:
		return s, true
	default:
		return "", false
	}
}

// BookCopy is a single lendable instance of a Book.
type BookCopy struct {
	ID         string     `json:"id" db:"id"`
	BookID     *int64     `json:"book_id,omitempty" db:"book_id"`
	BookTitle  *string    `json:"book_title,omitempty" db:"book_title"`
	Imprint    string     `json:"imprint" db:"imprint"`
	DueBack    *Date      `json:"due_back,omitempty" db:"due_back"`
	BorrowerID *string    `json:"borrower_id,omitempty" db:"borrower_id"`
	Status     CopyStatus `json:"status" db:"status"`
}
