package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"academy/internal/domain/audit"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type historyJSON struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	SessionID   int64           `json:"session_id"`
	Action      string          `json:"action"`
	Description string          `json:"description"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
}

func newHistoryJSON(e audit.Event) historyJSON {
	out := historyJSON{
		ID:          e.ID,
		Timestamp:   e.Timestamp,
		SessionID:   e.SessionID,
		Action:      string(e.Action),
		Description: e.Description,
	}
	if json.Valid([]byte(e.Metadata)) {
		out.Snapshot = json.RawMessage(e.Metadata)
	}
	return out
}

// handleListHistory returns a promotion's schedule changes, newest first.
// Query: limit (1..200).
func (s *server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	promotionID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	if _, err := s.Promotions.GetByID(ctx, promotionID); err != nil {
		respondError(w, err)
		return
	}

	events, err := s.History.ListByPromotion(ctx, promotionID, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]historyJSON, 0, len(events))
	for _, e := range events {
		out = append(out, newHistoryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}
