// Package scheduler runs the overdue reminder sweep. It has no timer of its
// own: an external cron hits the tick endpoint.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coreybb/locallibrary/delivery"
	"github.com/coreybb/locallibrary/models"
	"github.com/coreybb/locallibrary/webutil"
)

type OverdueLister interface {
	GetOverdueCopies(ctx context.Context, today models.Date) ([]models.BookCopy, error)
}

type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

type ReminderSender interface {
	SendReminder(ctx context.Context, reminder delivery.Reminder) error
}

// Scheduler finds overdue loans and sends one reminder per borrower.
type Scheduler struct {
	copies    OverdueLister
	users     UserLookup
	reminders ReminderSender
	now       func() time.Time
}

func New(copies OverdueLister, users UserLookup, reminders ReminderSender) *Scheduler {
	return &Scheduler{
		copies:    copies,
		users:     users,
		reminders: reminders,
		now:       time.Now,
	}
}

// WithClock replaces the scheduler's time source.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// TickResult summarizes one sweep.
type TickResult struct {
	OverdueCopies int `json:"overdue_copies"`
	Borrowers     int `json:"borrowers"`
	Sent          int `json:"sent"`
	Failed        int `json:"failed"`
}

// HandleTick is an HTTP handler that triggers a scheduler tick.
func (s *Scheduler) HandleTick(w http.ResponseWriter, r *http.Request) error {
	log.Println("INFO (Scheduler): Tick triggered via HTTP")

	result, err := s.Tick(r.Context())
	if err != nil {
		return fmt.Errorf("scheduler tick failed: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, result)
	return nil
}

// Tick runs a single sweep. A failed reminder is counted and logged but does
// not stop the remaining borrowers from being notified.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	today := models.DateOf(s.now().UTC())

	copies, err := s.copies.GetOverdueCopies(ctx, today)
	if err != nil {
		return TickResult{}, fmt.Errorf("failed to fetch overdue copies: %w", err)
	}
	result := TickResult{OverdueCopies: len(copies)}
	if len(copies) == 0 {
		return result, nil
	}

	byBorrower, order := groupByBorrower(copies)
	result.Borrowers = len(order)

	users, err := s.users.GetUsersByIDs(ctx, order)
	if err != nil {
		return result, fmt.Errorf("failed to fetch borrowers: %w", err)
	}

	for _, borrowerID := range order {
		user, ok := users[borrowerID]
		if !ok {
			log.Printf("WARN (Scheduler): Borrower %s of %d overdue copies no longer exists", borrowerID, len(byBorrower[borrowerID]))
			result.Failed++
			continue
		}

		reminder := delivery.Reminder{Borrower: user, Copies: byBorrower[borrowerID], Today: today}
		if err := s.reminders.SendReminder(ctx, reminder); err != nil {
			log.Printf("ERROR (Scheduler): Reminder for borrower %s failed: %v", borrowerID, err)
			result.Failed++
			continue
		}
		result.Sent++
	}

	log.Printf("INFO (Scheduler): Sweep for %s found %d overdue copies across %d borrowers, sent %d reminders",
		today, result.OverdueCopies, result.Borrowers, result.Sent)
	return result, nil
}

// groupByBorrower buckets copies by borrower, keeping first-seen order.
func groupByBorrower(copies []models.BookCopy) (map[string][]models.BookCopy, []string) {
	groups := make(map[string][]models.BookCopy)
	var order []string
	for _, c := range copies {
		if c.BorrowerID == nil {
			continue
		}
		id := *c.BorrowerID
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], c)
	}
	return groups, order
}
