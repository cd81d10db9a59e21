package outbox

import (
	"errors"
	"time"
)

// Status constants for the outbox entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Action types. Each maps to one registered executor.
const (
	ActionSessionAssigned  = "session_assigned"
	ActionSessionCancelled = "session_cancelled"
)

// DefaultMaxAttempts applies when an entry is saved without a limit.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyID         = errors.New("outbox entry id is required")
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
	ErrMissingCreated  = errors.New("created_at must be set")
	ErrTerminal        = errors.New("outbox entry is in a terminal state")
)

// Entry is one queued side effect of a scheduling change, replayed until
// it succeeds or runs out of attempts.
type Entry struct {
	ID              string
	ActionType      string
	Payload         string // JSON, decoded by the executor
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	ExternalID      string // provider message ID once delivered
	ErrorMessage    string
}

// NewEntry builds a pending entry.
// PRE: id, actionType and payload are non-empty
// POST: Returns an entry with Status pending and DefaultMaxAttempts
func NewEntry(id, actionType, payload string, now time.Time) Entry {
	return Entry{
		ID:          id,
		ActionType:  actionType,
		Payload:     payload,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
	}
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid; a zero MaxAttempts is defaulted
func (e *Entry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return ErrMissingCreated
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// IsTerminal reports whether the entry will never be attempted again.
func (e *Entry) IsTerminal() bool {
	switch e.Status {
	case StatusDone, StatusAbandoned:
		return true
	case StatusFailed:
		return e.Attempts >= e.MaxAttempts
	}
	return false
}

// MarkAttempt records an attempt at now.
// POST: Attempts incremented, status retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess marks the entry delivered.
func (e *Entry) MarkSuccess(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// MarkFailed records err. The entry only becomes failed once its attempts
// are exhausted; until then it stays retrying.
func (e *Entry) MarkFailed(err error) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

// MarkAbandoned stops all further attempts.
func (e *Entry) MarkAbandoned() {
	e.Status = StatusAbandoned
}

// NextRetryDelay is 2^Attempts * base, capped at maxDelay.
func (e *Entry) NextRetryDelay(base, maxDelay time.Duration) time.Duration {
	if e.Attempts >= 30 {
		return maxDelay
	}
	delay := base * (1 << e.Attempts)
	if delay <= 0 || delay > maxDelay {
		return maxDelay
	}
	return delay
}

// ReadyAt reports whether the backoff since the last attempt has elapsed.
func (e *Entry) ReadyAt(now time.Time, base, maxDelay time.Duration) bool {
	if e.LastAttemptedAt.IsZero() {
		return true
	}
	return !now.Before(e.LastAttemptedAt.Add(e.NextRetryDelay(base, maxDelay)))
}
