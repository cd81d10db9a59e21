package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoopSender logs messages instead of delivering them. It is used when no
// Resend key is configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs req and reports it as delivered.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	id := "noop-" + uuid.NewString()
	slog.Info("noop_email_send", "message_id", id, "to", req.To, "subject", req.Subject, "category", req.Category)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}
