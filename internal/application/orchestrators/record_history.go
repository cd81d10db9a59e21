package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"academy/internal/domain/audit"
	"academy/internal/domain/session"
)

// HistoryWriter is the part of the audit store the recorder needs.
type HistoryWriter interface {
	Save(ctx context.Context, e audit.Event) error
}

// ScheduleHistory records every committed registry change as an audit event.
// Its methods match the registry callback signature.
type ScheduleHistory struct {
	Store      HistoryWriter
	GenerateID func() string
	Now        func() time.Time
}

// OnAdded records a session_added event.
func (h *ScheduleHistory) OnAdded(ctx context.Context, s session.Session) {
	h.record(ctx, audit.ActionSessionAdded, s)
}

// OnRemoved records a session_removed event.
func (h *ScheduleHistory) OnRemoved(ctx context.Context, s session.Session) {
	h.record(ctx, audit.ActionSessionRemoved, s)
}

func (h *ScheduleHistory) record(ctx context.Context, action audit.Action, s session.Session) {
	e := audit.NewEvent(h.GenerateID(), action, s, h.Now())
	if err := e.Validate(); err != nil {
		slog.Error("history_event_invalid", "action", action, "session_id", s.ID, "error", err)
		return
	}
	if err := h.Store.Save(ctx, e); err != nil {
		slog.Error("history_record_failed", "action", action, "session_id", s.ID, "error", err)
	}
}

// SessionCallback is the shape of the registry's OnAdded and OnRemoved hooks.
type SessionCallback func(ctx context.Context, s session.Session)

// FanOut returns a callback invoking each non-nil callback in order.
func FanOut(callbacks ...SessionCallback) SessionCallback {
	return func(ctx context.Context, s session.Session) {
		for _, cb := range callbacks {
			if cb != nil {
				cb(ctx, s)
			}
		}
	}
}
