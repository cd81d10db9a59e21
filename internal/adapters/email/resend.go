package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends email via the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a sender for apiKey.
// PRE: apiKey is a Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return NewResendSenderWithClient(resend.NewClient(apiKey), from, replyTo)
}

// NewResendSenderWithClient wraps an already configured client.
func NewResendSenderWithClient(client *resend.Client, from, replyTo string) *ResendSender {
	return &ResendSender{client: client, from: from, replyTo: replyTo}
}

// Send delivers req through Resend.
// PRE: req has at least one recipient
// POST: Message is accepted; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	from := req.From
	if from == "" {
		from = s.from
	}
	replyTo := req.ReplyTo
	if replyTo == "" {
		replyTo = s.replyTo
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if replyTo != "" {
		params.ReplyTo = replyTo
	}
	if req.Category != "" {
		params.Tags = []resend.Tag{{Name: "category", Value: req.Category}}
	}

	sent, err := s.client.Emails.SendWithOptions(ctx, params, &resend.SendEmailOptions{IdempotencyKey: req.IdempotencyKey})
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "to", req.To, "subject", req.Subject, "idempotency_key", req.IdempotencyKey)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("resend_sent", "message_id", sent.Id, "to", req.To, "subject", req.Subject, "category", req.Category)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}
