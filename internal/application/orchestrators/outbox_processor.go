package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"academy/internal/adapters/email"
	outboxStore "academy/internal/adapters/storage/outbox"
	domain "academy/internal/domain/outbox"
)

// Delivery outcomes reported to a DeliveryObserver.
const (
	OutcomeDelivered = "delivered"
	OutcomeRetrying  = "retrying"
	OutcomeFailed    = "failed"
)

// ActionExecutor performs one kind of outbox action.
type ActionExecutor interface {
	// Execute runs the action and returns the provider's ID for it.
	Execute(ctx context.Context, payload string) (string, error)
}

// DeliveryObserver is told the outcome of every attempt.
type DeliveryObserver interface {
	NotificationDelivered(outcome string)
}

// OutboxProcessor delivers queued notifications with exponential backoff.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	observer  DeliveryObserver
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a processor. observer may be nil.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor, observer DeliveryObserver) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		observer:  observer,
		now:       time.Now,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 20,
	}
}

// ProcessPending attempts up to one batch of pending entries whose backoff
// has elapsed. Entries still waiting are paged past so they cannot hold
// back newer ones.
// PRE: Context is valid
// POST: Attempted entries are saved with their new status
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	ready, err := p.collectReady(ctx)
	if err != nil {
		return err
	}

	for _, entry := range ready {
		if err := p.attempt(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err)
		}
	}
	return nil
}

// collectReady gathers ready entries before any is attempted, since an
// attempt moves entries out of the pending set and would shift the pages.
func (p *OutboxProcessor) collectReady(ctx context.Context) ([]domain.Entry, error) {
	now := p.now()
	var ready []domain.Entry
	for offset := 0; len(ready) < p.batchSize; offset += p.batchSize {
		page, err := p.store.ListPendingFrom(ctx, offset, p.batchSize)
		if err != nil {
			return nil, fmt.Errorf("list pending outbox entries: %w", err)
		}
		for _, entry := range page {
			if entry.ReadyAt(now, p.baseDelay, p.maxDelay) && len(ready) < p.batchSize {
				ready = append(ready, entry)
			}
		}
		if len(page) < p.batchSize {
			break
		}
	}
	return ready, nil
}

// ProcessSingle attempts one entry immediately, ignoring backoff.
// PRE: entryID is non-empty
// POST: Entry is attempted and saved, or ErrTerminal is returned
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.Status == domain.StatusDone || entry.Status == domain.StatusAbandoned {
		return fmt.Errorf("entry %s: %w", entryID, domain.ErrTerminal)
	}
	// A manual retry of an exhausted entry grants it one more attempt.
	if entry.Attempts >= entry.MaxAttempts {
		entry.MaxAttempts = entry.Attempts + 1
	}
	return p.attempt(ctx, entry)
}

// AbandonEntry stops all further attempts for an entry.
// PRE: entryID is non-empty
// POST: Entry status is abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	slog.Info("outbox_entry_abandoned", "entry_id", entry.ID, "action_type", entry.ActionType)
	return p.store.Save(ctx, entry)
}

func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) error {
	entry.MarkAttempt(p.now())

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MaxAttempts = entry.Attempts
		entry.MarkFailed(fmt.Errorf("no executor registered for action type %q", entry.ActionType))
		p.observe(OutcomeFailed)
		return p.store.Save(ctx, entry)
	}

	externalID, err := executor.Execute(ctx, entry.Payload)
	switch {
	case err == nil:
		entry.MarkSuccess(externalID)
		p.observe(OutcomeDelivered)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	default:
		entry.MarkFailed(err)
		if entry.Status == domain.StatusFailed {
			p.observe(OutcomeFailed)
		} else {
			p.observe(OutcomeRetrying)
		}
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err)
	}
	return p.store.Save(ctx, entry)
}

func (p *OutboxProcessor) observe(outcome string) {
	if p.observer != nil {
		p.observer.NotificationDelivered(outcome)
	}
}

// mdRenderer converts notification Markdown to HTML. Raw HTML in the input
// is escaped because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts md to an HTML fragment.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EmailExecutor delivers NotificationPayload entries by email.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute renders the payload's Markdown and sends it.
// PRE: payload is a JSON NotificationPayload
// POST: Returns the provider message ID
// INVARIANT: outbox entry status is managed by the caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p NotificationPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	html, err := RenderMarkdown(p.Markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	res, err := e.Sender.Send(ctx, email.SendRequest{
		To:             p.To,
		Subject:        p.Subject,
		HTML:           html,
		IdempotencyKey: p.Key,
		Category:       p.Category,
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// StartBackgroundWorker processes pending entries every interval until ctx
// is cancelled.
// PRE: interval > 0
// POST: Returns a channel closed once the worker has exited
func StartBackgroundWorker(ctx context.Context, processor *OutboxProcessor, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
				if err := processor.ProcessPending(runCtx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err)
				}
				cancel()
			case <-ctx.Done():
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
	return done
}
