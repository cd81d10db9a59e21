package web

import (
	"net/http"
	"strconv"
	"time"

	"academy/internal/domain/outbox"
)

const (
	defaultOutboxLimit = 50
	maxOutboxLimit     = 100
)

type outboxJSON struct {
	ID              string    `json:"id"`
	ActionType      string    `json:"action_type"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	MaxAttempts     int       `json:"max_attempts"`
	LastAttemptedAt time.Time `json:"last_attempted_at,omitzero"`
	CreatedAt       time.Time `json:"created_at"`
	ExternalID      string    `json:"external_id,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// newOutboxJSON omits the payload: it carries recipient addresses.
func newOutboxJSON(e outbox.Entry) outboxJSON {
	return outboxJSON{
		ID:              e.ID,
		ActionType:      e.ActionType,
		Status:          e.Status,
		Attempts:        e.Attempts,
		MaxAttempts:     e.MaxAttempts,
		LastAttemptedAt: e.LastAttemptedAt,
		CreatedAt:       e.CreatedAt,
		ExternalID:      e.ExternalID,
		ErrorMessage:    e.ErrorMessage,
	}
}

// handleListOutbox lists notification entries.
// Query: status=failed (default) or pending, limit (1..100).
func (s *server) handleListOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultOutboxLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= maxOutboxLimit {
		limit = n
	}

	var (
		entries []outbox.Entry
		err     error
	)
	switch status := r.URL.Query().Get("status"); status {
	case "", outbox.StatusFailed:
		entries, err = s.Outbox.ListFailed(ctx, limit)
	case outbox.StatusPending:
		entries, err = s.Outbox.ListPending(ctx, limit)
	default:
		writeError(w, http.StatusBadRequest, "status must be failed or pending")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]outboxJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, newOutboxJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleOutboxStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.Outbox.CountByStatus(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// handleRetryOutbox attempts an entry now, ignoring its backoff.
func (s *server) handleRetryOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.Processor.ProcessSingle(ctx, id); err != nil {
		respondError(w, err)
		return
	}
	entry, err := s.Outbox.GetByID(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOutboxJSON(entry))
}

// handleAbandonOutbox stops further attempts for an entry.
func (s *server) handleAbandonOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.Processor.AbandonEntry(ctx, id); err != nil {
		respondError(w, err)
		return
	}
	entry, err := s.Outbox.GetByID(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOutboxJSON(entry))
}
