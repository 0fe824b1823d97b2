package delivery_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/locallibrary/delivery"
	"github.com/coreybb/locallibrary/models"
)

func ptr[T any](v T) *T { return &v }

func sampleReminder(email *string) delivery.Reminder {
	due := models.NewDate(2026, 10, 1)
	return delivery.Reminder{
		Borrower: models.User{ID: "u-1", Username: "reader", Email: email},
		Copies: []models.BookCopy{
			{ID: "c-1", BookTitle: ptr("The Dispossessed"), Imprint: "Harper", DueBack: &due},
			{ID: "c-2", Imprint: "Penguin", DueBack: &due},
		},
		Today: models.NewDate(2026, 10, 15),
	}
}

func Test_Reminder_Text(t *testing.T) {
	r := sampleReminder(nil)

	assert.Equal(t, "2 library books are overdue", r.Subject())
	body := r.Body()
	assert.Contains(t, body, "Hello reader")
	assert.Contains(t, body, "As of 2026-10-15")
	assert.Contains(t, body, "The Dispossessed (Harper), due 2026-10-01")
	assert.Contains(t, body, "(untitled) (Penguin)")

	r.Copies = r.Copies[:1]
	assert.Equal(t, "1 library book is overdue", r.Subject())
}

func Test_EmailReminderProvider_Send(t *testing.T) {
	var got map[string]any
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = jsoniter.Unmarshal(raw, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	p := delivery.NewEmailReminderProvider("sg-key", "desk@library.test", "Local Library").WithEndpoint(server.URL)
	require.NoError(t, p.Send(context.Background(), sampleReminder(ptr("reader@example.org"))))

	assert.Equal(t, "Bearer sg-key", auth)
	assert.Equal(t, "2 library books are overdue", got["subject"])
	to := got["personalizations"].([]any)[0].(map[string]any)["to"].([]any)[0].(map[string]any)
	assert.Equal(t, "reader@example.org", to["email"])
}

func Test_EmailReminderProvider_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	p := delivery.NewEmailReminderProvider("wrong", "desk@library.test", "").WithEndpoint(server.URL)

	err := p.Send(context.Background(), sampleReminder(ptr("reader@example.org")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	assert.Error(t, p.Send(context.Background(), sampleReminder(nil)))
}

type recordingProvider struct {
	kind string
	sent []delivery.Reminder
	err  error
}

func (p *recordingProvider) Type() string { return p.kind }

func (p *recordingProvider) Send(_ context.Context, r delivery.Reminder) error {
	p.sent = append(p.sent, r)
	return p.err
}

func Test_ReminderService_ChoosesProvider(t *testing.T) {
	email := &recordingProvider{kind: delivery.ProviderTypeEmail}
	logged := &recordingProvider{kind: delivery.ProviderTypeLog}
	svc := delivery.NewReminderService(email, logged)

	require.NoError(t, svc.SendReminder(context.Background(), sampleReminder(ptr("reader@example.org"))))
	require.NoError(t, svc.SendReminder(context.Background(), sampleReminder(nil)))
	require.NoError(t, svc.SendReminder(context.Background(), sampleReminder(ptr(""))))

	assert.Len(t, email.sent, 1)
	assert.Len(t, logged.sent, 2)
}

func Test_ReminderService_Failures(t *testing.T) {
	err := delivery.NewReminderService().SendReminder(context.Background(), sampleReminder(nil))
	assert.ErrorIs(t, err, delivery.ErrNoProvider)

	failing := &recordingProvider{kind: delivery.ProviderTypeLog, err: errors.New("disk full")}
	err = delivery.NewReminderService(failing).SendReminder(context.Background(), sampleReminder(nil))
	assert.ErrorContains(t, err, "disk full")
}

func Test_LogReminderProvider(t *testing.T) {
	p := delivery.NewLogReminderProvider(nil)
	assert.Equal(t, delivery.ProviderTypeLog, p.Type())
	assert.NoError(t, p.Send(context.Background(), sampleReminder(nil)))
}
