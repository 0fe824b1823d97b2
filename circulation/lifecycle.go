// Package circulation governs a book copy's loan lifecycle: renewal windows,
// overdue checks, and status transitions.
package circulation

import (
	"fmt"
	"strings"

	"github.com/coreybb/locallibrary/models"
)

const (
	// MaxRenewalDays is how far ahead a due date may be set.
	MaxRenewalDays = 28
	// DefaultRenewalDays is the proposal offered when no date is given.
	DefaultRenewalDays = 21

	dueBackField = "due_back"

	ReasonRenewalInPast  = "invalid date - renewal in past"
	ReasonRenewalTooFar  = "invalid date - renewal more than 4 weeks ahead"
	ReasonDueDateMissing = "due date is required for a loan"
)

// DefaultRenewalProposal is today plus three weeks.
func DefaultRenewalProposal(today models.Date) models.Date {
	return today.AddDays(DefaultRenewalDays)
}

// ValidateDueDate checks proposed lies within [today, today+28 days].
func ValidateDueDate(proposed, today models.Date) error {
	if proposed.Before(today) {
		return &models.InvalidDateError{Field: dueBackField, Reason: ReasonRenewalInPast}
	}
	if proposed.After(today.AddDays(MaxRenewalDays)) {
		return &models.InvalidDateError{Field: dueBackField, Reason: ReasonRenewalTooFar}
	}
	return nil
}

// IsOverdue reports whether the copy's due date has passed.
func IsOverdue(c models.BookCopy, today models.Date) bool {
	return c.DueBack != nil && today.After(*c.DueBack)
}

// Renew moves the due date of a loan. Status and borrower are left alone.
// Only on-loan copies carry a due date, so any other status is refused.
func Renew(c *models.BookCopy, proposed, today models.Date) error {
	if c.Status != models.CopyStatusOnLoan {
		return fmt.Errorf("%w: only a copy on loan can be renewed, copy is %s", models.ErrInvalidTransition, c.Status)
	}
	if err := ValidateDueDate(proposed, today); err != nil {
		return err
	}
	due := proposed
	c.DueBack = &due
	return nil
}

// Reserve places a hold for borrowerID on an available copy.
func Reserve(c *models.BookCopy, borrowerID string) error {
	borrowerID = strings.TrimSpace(borrowerID)
	if borrowerID == "" {
		return models.NewValidationError("borrower_id", "must be provided")
	}
	if c.Status != models.CopyStatusAvailable {
		return transitionError(c.Status, models.CopyStatusReserved)
	}
	c.Status = models.CopyStatusReserved
	c.BorrowerID = &borrowerID
	c.DueBack = nil
	return nil
}

// CancelReservation releases a hold.
func CancelReservation(c *models.BookCopy) error {
	if c.Status != models.CopyStatusReserved {
		return transitionError(c.Status, models.CopyStatusAvailable)
	}
	c.Status = models.CopyStatusAvailable
	c.BorrowerID = nil
	c.DueBack = nil
	return nil
}

// Checkout lends the copy to borrowerID until due. A reserved copy can only be
// checked out by the borrower holding it.
func Checkout(c *models.BookCopy, borrowerID string, due, today models.Date) error {
	borrowerID = strings.TrimSpace(borrowerID)
	if borrowerID == "" {
		return models.NewValidationError("borrower_id", "must be provided")
	}
	switch c.Status {
	case models.CopyStatusAvailable:
	case models.CopyStatusReserved:
		if c.BorrowerID == nil || *c.BorrowerID != borrowerID {
			return fmt.Errorf("%w: copy is reserved for another borrower", models.ErrInvalidTransition)
		}
	default:
		return transitionError(c.Status, models.CopyStatusOnLoan)
	}
	if err := ValidateDueDate(due, today); err != nil {
		return err
	}

	c.Status = models.CopyStatusOnLoan
	c.BorrowerID = &borrowerID
	c.DueBack = &due
	return nil
}

// Return marks an on-loan copy as available again.
func Return(c *models.BookCopy) error {
	if c.Status != models.CopyStatusOnLoan {
		return transitionError(c.Status, models.CopyStatusAvailable)
	}
	c.Status = models.CopyStatusAvailable
	c.BorrowerID = nil
	c.DueBack = nil
	return nil
}

// SendToMaintenance is allowed from any state.
func SendToMaintenance(c *models.BookCopy) error {
	c.Status = models.CopyStatusMaintenance
	c.BorrowerID = nil
	c.DueBack = nil
	return nil
}

// ReleaseFromMaintenance puts a repaired copy back on the shelf.
func ReleaseFromMaintenance(c *models.BookCopy) error {
	if c.Status != models.CopyStatusMaintenance {
		return transitionError(c.Status, models.CopyStatusAvailable)
	}
	c.Status = models.CopyStatusAvailable
	c.BorrowerID = nil
	c.DueBack = nil
	return nil
}

// CheckInvariant verifies borrower and due date agree with the status.
func CheckInvariant(c models.BookCopy) error {
	hasBorrower := c.BorrowerID != nil
	hasDue := c.DueBack != nil

	var ok bool
	switch c.Status {
	case models.CopyStatusOnLoan:
		ok = hasBorrower && hasDue
	case models.CopyStatusReserved:
		ok = hasBorrower && !hasDue
	case models.CopyStatusAvailable, models.CopyStatusMaintenance:
		ok = !hasBorrower && !hasDue
	default:
		return fmt.Errorf("unknown copy status %q", c.Status)
	}
	if !ok {
		return fmt.Errorf("copy %s in status %s has borrower=%t due_back=%t", c.ID, c.Status, hasBorrower, hasDue)
	}
	return nil
}

func transitionError(from, to models.CopyStatus) error {
	return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
}
