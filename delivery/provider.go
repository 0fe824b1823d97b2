package delivery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/coreybb/locallibrary/models"
)

const (
	ProviderTypeEmail = "email"
	ProviderTypeLog   = "log"
)

var ErrNoProvider = errors.New("no reminder provider available")

// Reminder lists the overdue copies held by one borrower.
type Reminder struct {
	Borrower models.User
	Copies   []models.BookCopy
	Today    models.Date
}

// Subject is the one-line summary used as the notice title.
func (r Reminder) Subject() string {
	if len(r.Copies) == 1 {
		return "1 library book is overdue"
	}
	return fmt.Sprintf("%d library books are overdue", len(r.Copies))
}

// Body renders the plain-text notice.
func (r Reminder) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nAs of %s the following items are overdue:\n\n", r.Borrower.Username, r.Today)
	for _, c := range r.Copies {
		title := "(untitled)"
		if c.BookTitle != nil {
			title = *c.BookTitle
		}
		due := ""
		if c.DueBack != nil {
			due = c.DueBack.String()
		}
		fmt.Fprintf(&b, "  - %s (%s), due %s\n", title, c.Imprint, due)
	}
	b.WriteString("\nPlease return or renew them at the front desk.\n")
	return b.String()
}

// ReminderProvider is the adapter interface for reminder channels.
type ReminderProvider interface {
	// Type returns the channel this provider handles (e.g. "email").
	Type() string
	// Send delivers the reminder to its borrower.
	Send(ctx context.Context, reminder Reminder) error
}

// ReminderService picks a provider for each borrower and sends the notice.
// Borrowers with an email address get email when an email provider is
// registered; everyone else falls back to the log provider.
type ReminderService struct {
	providers map[string]ReminderProvider
}

func NewReminderService(providers ...ReminderProvider) *ReminderService {
	providerMap := make(map[string]ReminderProvider, len(providers))
	for _, p := range providers {
		providerMap[p.Type()] = p
	}
	return &ReminderService{providers: providerMap}
}

func (s *ReminderService) providerFor(borrower models.User) (ReminderProvider, error) {
	if borrower.Email != nil && *borrower.Email != "" {
		if p, ok := s.providers[ProviderTypeEmail]; ok {
			return p, nil
		}
	}
	if p, ok := s.providers[ProviderTypeLog]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w for borrower %s", ErrNoProvider, borrower.ID)
}

// SendReminder delivers one reminder and logs the outcome.
func (s *ReminderService) SendReminder(ctx context.Context, reminder Reminder) error {
	provider, err := s.providerFor(reminder.Borrower)
	if err != nil {
		return err
	}

	if err := provider.Send(ctx, reminder); err != nil {
		log.Printf("ERROR (ReminderService): %s reminder to borrower %s failed: %v",
			provider.Type(), reminder.Borrower.ID, err)
		return fmt.Errorf("failed to send %s reminder to borrower %s: %w", provider.Type(), reminder.Borrower.ID, err)
	}

	log.Printf("INFO (ReminderService): Sent %s reminder for %d copies to borrower %s",
		provider.Type(), len(reminder.Copies), reminder.Borrower.ID)
	return nil
}
