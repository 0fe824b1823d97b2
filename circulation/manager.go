package circulation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coreybb/locallibrary/auth"
	"github.com/coreybb/locallibrary/models"
)

// CopyStore is the persistence the lifecycle manager needs.
type CopyStore interface {
	GetBookCopyByID(ctx context.Context, copyID string) (*models.BookCopy, error)
	UpdateBookCopyDueBack(ctx context.Context, copyID string, dueBack models.Date) error
	UpdateBookCopyLoanState(ctx context.Context, c *models.BookCopy) error
	ListOnLoanCopies(ctx context.Context, borrowerID *string, page models.Page) ([]models.BookCopy, int, error)
}

// Manager authorizes, validates, and persists copy lifecycle changes.
// Every mutation checks the actor's capability before touching the store.
type Manager struct {
	store  CopyStore
	policy auth.Policy
	now    func() time.Time
}

func NewManager(store CopyStore, policy auth.Policy) *Manager {
	return &Manager{store: store, policy: policy, now: time.Now}
}

// WithClock replaces the manager's time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Today is the current calendar date in UTC.
func (m *Manager) Today() models.Date {
	return models.DateOf(m.now().UTC())
}

// IsOverdue evaluates c against today's date.
func (m *Manager) IsOverdue(c models.BookCopy) bool {
	return IsOverdue(c, m.Today())
}

// ProposeRenewal loads the copy and returns the default renewal date.
func (m *Manager) ProposeRenewal(ctx context.Context, copyID string, actor *auth.Actor) (*models.BookCopy, models.Date, error) {
	if err := auth.Require(m.policy, actor, auth.CapMarkReturned); err != nil {
		return nil, models.Date{}, err
	}
	c, err := m.store.GetBookCopyByID(ctx, copyID)
	if err != nil {
		return nil, models.Date{}, err
	}
	return c, DefaultRenewalProposal(m.Today()), nil
}

// Renew sets a new due date on the copy after validating the renewal window.
func (m *Manager) Renew(ctx context.Context, copyID string, proposed models.Date, actor *auth.Actor) (*models.BookCopy, error) {
	if err := auth.Require(m.policy, actor, auth.CapMarkReturned); err != nil {
		return nil, err
	}
	c, err := m.store.GetBookCopyByID(ctx, copyID)
	if err != nil {
		return nil, err
	}
	if err := Renew(c, proposed, m.Today()); err != nil {
		return nil, err
	}
	if err := m.store.UpdateBookCopyDueBack(ctx, c.ID, proposed); err != nil {
		return nil, fmt.Errorf("failed to persist renewal of copy %s: %w", c.ID, err)
	}
	return c, nil
}

// Reserve holds the copy for borrowerID, or for the actor when borrowerID is empty.
func (m *Manager) Reserve(ctx context.Context, copyID, borrowerID string, actor *auth.Actor) (*models.BookCopy, error) {
	return m.transition(ctx, copyID, actor, func(c *models.BookCopy) error {
		if strings.TrimSpace(borrowerID) == "" {
			borrowerID = actor.ID
		}
		return Reserve(c, borrowerID)
	})
}

func (m *Manager) CancelReservation(ctx context.Context, copyID string, actor *auth.Actor) (*models.BookCopy, error) {
	return m.transition(ctx, copyID, actor, CancelReservation)
}

// Checkout lends the copy. A nil due date defaults to the renewal proposal.
func (m *Manager) Checkout(ctx context.Context, copyID, borrowerID string, due *models.Date, actor *auth.Actor) (*models.BookCopy, error) {
	today := m.Today()
	dueBack := DefaultRenewalProposal(today)
	if due != nil {
		dueBack = *due
	}
	return m.transition(ctx, copyID, actor, func(c *models.BookCopy) error {
		return Checkout(c, borrowerID, dueBack, today)
	})
}

func (m *Manager) Return(ctx context.Context, copyID string, actor *auth.Actor) (*models.BookCopy, error) {
	return m.transition(ctx, copyID, actor, Return)
}

func (m *Manager) SendToMaintenance(ctx context.Context, copyID string, actor *auth.Actor) (*models.BookCopy, error) {
	return m.transition(ctx, copyID, actor, SendToMaintenance)
}

func (m *Manager) ReleaseFromMaintenance(ctx context.Context, copyID string, actor *auth.Actor) (*models.BookCopy, error) {
	return m.transition(ctx, copyID, actor, ReleaseFromMaintenance)
}

// ListOnLoanFor returns the actor's own loans, soonest due first.
func (m *Manager) ListOnLoanFor(ctx context.Context, actor *auth.Actor, page models.Page) ([]models.BookCopy, models.Metadata, error) {
	if actor == nil {
		return nil, models.Metadata{}, models.ErrUnauthenticated
	}
	borrowerID := actor.ID
	return m.listOnLoan(ctx, &borrowerID, page)
}

// ListAllOnLoan returns every loan, soonest due first.
func (m *Manager) ListAllOnLoan(ctx context.Context, actor *auth.Actor, page models.Page) ([]models.BookCopy, models.Metadata, error) {
	if err := auth.Require(m.policy, actor, auth.CapMarkReturned); err != nil {
		return nil, models.Metadata{}, err
	}
	return m.listOnLoan(ctx, nil, page)
}

func (m *Manager) listOnLoan(ctx context.Context, borrowerID *string, page models.Page) ([]models.BookCopy, models.Metadata, error) {
	copies, total, err := m.store.ListOnLoanCopies(ctx, borrowerID, page)
	if err != nil {
		return nil, models.Metadata{}, fmt.Errorf("failed to list copies on loan: %w", err)
	}
	return copies, models.CalculateMetadata(total, page), nil
}

func (m *Manager) transition(ctx context.Context, copyID string, actor *auth.Actor, apply func(*models.BookCopy) error) (*models.BookCopy, error) {
	if err := auth.Require(m.policy, actor, auth.CapMarkReturned); err != nil {
		return nil, err
	}
	c, err := m.store.GetBookCopyByID(ctx, copyID)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if err := apply(c); err != nil {
		return nil, err
	}
	if err := CheckInvariant(*c); err != nil {
		return nil, fmt.Errorf("transition %s -> %s broke copy invariant: %w", from, c.Status, err)
	}
	if err := m.store.UpdateBookCopyLoanState(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to persist status of copy %s: %w", c.ID, err)
	}
	return c, nil
}
