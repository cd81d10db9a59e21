package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domain "academy/internal/domain/outbox"
	"academy/internal/domain/session"
)

// OutboxWriter is the part of the outbox store the notifier needs.
type OutboxWriter interface {
	Save(ctx context.Context, e domain.Entry) error
}

// NotificationPayload is the JSON stored in a session notification entry.
type NotificationPayload struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Markdown string   `json:"markdown"`
	Category string   `json:"category,omitempty"`
	// Key is the outbox entry ID, reused as the provider idempotency key.
	Key string `json:"key,omitempty"`
}

// SessionNotifier turns registry changes into outbox entries addressed to
// the session's trainer. Its methods match the registry callback signature.
type SessionNotifier struct {
	Outbox     OutboxWriter
	GenerateID func() string
	Now        func() time.Time
}

// OnAdded queues a session_assigned notification.
func (n *SessionNotifier) OnAdded(ctx context.Context, s session.Session) {
	n.enqueue(ctx, domain.ActionSessionAssigned, s)
}

// OnRemoved queues a session_cancelled notification.
func (n *SessionNotifier) OnRemoved(ctx context.Context, s session.Session) {
	n.enqueue(ctx, domain.ActionSessionCancelled, s)
}

// enqueue never fails the caller: the session change has already been
// committed, so a lost notification is only logged.
func (n *SessionNotifier) enqueue(ctx context.Context, action string, s session.Session) {
	if s.Trainer.Email == "" {
		slog.Info("notification_skipped", "action", action, "session_id", s.ID, "reason", "trainer has no email")
		return
	}
	id := n.GenerateID()
	notification := BuildSessionNotification(action, s)
	notification.Key = id
	payload, err := json.Marshal(notification)
	if err != nil {
		slog.Error("notification_encode_failed", "action", action, "session_id", s.ID, "error", err)
		return
	}
	entry := domain.NewEntry(id, action, string(payload), n.Now())
	if err := entry.Validate(); err != nil {
		slog.Error("notification_invalid", "action", action, "session_id", s.ID, "error", err)
		return
	}
	if err := n.Outbox.Save(ctx, entry); err != nil {
		slog.Error("notification_enqueue_failed", "action", action, "session_id", s.ID, "error", err)
		return
	}
	slog.Info("notification_enqueued", "entry_id", entry.ID, "action", action, "session_id", s.ID)
}

// BuildSessionNotification renders the subject and Markdown body for action.
// PRE: action is ActionSessionAssigned or ActionSessionCancelled
func BuildSessionNotification(action string, s session.Session) NotificationPayload {
	var subject, lead string
	switch action {
	case domain.ActionSessionCancelled:
		subject = "Session cancelled: " + s.Description
		lead = "The following session has been **removed** from the schedule."
	default:
		subject = "New session: " + s.Description
		lead = "You have been scheduled to teach the following session."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n%s\n\n", s.Trainer.FirstName, lead)
	fmt.Fprintf(&b, "- **Session:** %s\n", s.Description)
	fmt.Fprintf(&b, "- **From:** %s\n", s.StartAt.Format(session.DateFormat))
	fmt.Fprintf(&b, "- **To:** %s\n", s.EndAt.Format(session.DateFormat))
	if s.PromotionID != 0 {
		fmt.Fprintf(&b, "- **Promotion:** #%d\n", s.PromotionID)
	}

	return NotificationPayload{
		To:       []string{s.Trainer.Email},
		Subject:  subject,
		Markdown: b.String(),
		Category: action,
	}
}
