package delivery

import (
	"context"
	"log/slog"
)

// LogReminderProvider records reminders in the service log instead of
// sending them anywhere.
type LogReminderProvider struct {
	logger *slog.Logger
}

func NewLogReminderProvider(logger *slog.Logger) *LogReminderProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReminderProvider{logger: logger}
}

func (p *LogReminderProvider) Type() string { return ProviderTypeLog }

func (p *LogReminderProvider) Send(ctx context.Context, reminder Reminder) error {
	ids := make([]string, 0, len(reminder.Copies))
	for _, c := range reminder.Copies {
		ids = append(ids, c.ID)
	}
	p.logger.InfoContext(ctx, "Overdue reminder",
		"borrower_id", reminder.Borrower.ID,
		"username", reminder.Borrower.Username,
		"subject", reminder.Subject(),
		"copy_ids", ids,
	)
	return nil
}
