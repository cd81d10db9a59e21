package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipients is returned when a request has no To address.
var ErrNoRecipients = errors.New("email has no recipients")

// SendRequest is one outgoing message.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default
	Subject string
	HTML    string
	ReplyTo string
	// IdempotencyKey makes a retried request deliver at most once.
	IdempotencyKey string
	// Category tags the message for provider-side filtering.
	Category string
}

// Validate checks the request before it reaches a provider.
func (r SendRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	return nil
}

// SendResult is what the provider returned for an accepted message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
