package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const sendgridMailEndpoint = "https://api.sendgrid.com/v3/mail/send"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EmailReminderProvider sends reminders as plain-text email via SendGrid.
type EmailReminderProvider struct {
	apiKey    string
	fromEmail string
	fromName  string
	endpoint  string
	client    *http.Client
}

func NewEmailReminderProvider(apiKey, fromEmail, fromName string) *EmailReminderProvider {
	return &EmailReminderProvider{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		endpoint:  sendgridMailEndpoint,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithEndpoint points the provider at a different mail send URL.
func (p *EmailReminderProvider) WithEndpoint(endpoint string) *EmailReminderProvider {
	p.endpoint = endpoint
	return p
}

func (p *EmailReminderProvider) Type() string { return ProviderTypeEmail }

func (p *EmailReminderProvider) Send(ctx context.Context, reminder Reminder) error {
	if reminder.Borrower.Email == nil || *reminder.Borrower.Email == "" {
		return fmt.Errorf("borrower %s has no email address", reminder.Borrower.ID)
	}

	payload := sgMailPayload{
		Personalizations: []sgPersonalization{{
			To: []sgAddress{{Email: *reminder.Borrower.Email, Name: reminder.Borrower.Username}},
		}},
		From:    sgAddress{Email: p.fromEmail, Name: p.fromName},
		Subject: reminder.Subject(),
		Content: []sgContent{{Type: "text/plain", Value: reminder.Body()}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SendGrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create SendGrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("SendGrid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SendGrid returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// SendGrid v3 Mail Send API payload types.
type sgMailPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
