package audit

import (
	"encoding/json"
	"errors"
	"time"

	"academy/internal/domain/session"
)

// Action is the schedule change an event records.
type Action string

const (
	ActionSessionAdded   Action = "session_added"
	ActionSessionRemoved Action = "session_removed"
)

// Domain errors
var (
	ErrEmptyID       = errors.New("audit event ID cannot be empty")
	ErrUnknownAction = errors.New("audit event action is unknown")
	ErrNoPromotion   = errors.New("audit event must reference a promotion")
)

// Event is one entry of a promotion's schedule history.
type Event struct {
	ID          string
	Timestamp   time.Time
	PromotionID int64
	SessionID   int64
	Action      Action
	Description string // human-readable summary
	Metadata    string // JSON snapshot of the session
}

// snapshot is the session as it stood when the event was recorded.
type snapshot struct {
	Description string `json:"description"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	TrainerID   int64  `json:"trainer_id"`
	TrainerName string `json:"trainer_name"`
}

// NewEvent records action on s.
// PRE: id is non-empty, s has a promotion
// POST: Returns an Event carrying a JSON snapshot of s
func NewEvent(id string, action Action, s session.Session, now time.Time) Event {
	meta, _ := json.Marshal(snapshot{
		Description: s.Description,
		StartAt:     s.StartAt.Format(session.DateFormat),
		EndAt:       s.EndAt.Format(session.DateFormat),
		TrainerID:   s.Trainer.ID,
		TrainerName: s.Trainer.FullName(),
	})
	return Event{
		ID:          id,
		Timestamp:   now.UTC(),
		PromotionID: s.PromotionID,
		SessionID:   s.ID,
		Action:      action,
		Description: string(action) + ": " + s.String(),
		Metadata:    string(meta),
	}
}

// Validate checks if the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Action != ActionSessionAdded && e.Action != ActionSessionRemoved {
		return ErrUnknownAction
	}
	if e.PromotionID <= 0 {
		return ErrNoPromotion
	}
	return nil
}
