package scheduling

import (
	"errors"
	"fmt"

	"academy/internal/domain/session"
)

// Sentinel errors matched with errors.Is.
var (
	ErrOverlap     = errors.New("session dates overlap an existing session")
	ErrPersistence = errors.New("session persistence failed")
)

// OverlapError reports the scheduled session a candidate conflicts with.
// Nothing was persisted and the registry is unchanged.
type OverlapError struct {
	Candidate session.Session
	Existing  session.Session
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%v: %s conflicts with session %d %s", ErrOverlap, e.Candidate, e.Existing.ID, e.Existing)
}

// Is makes errors.Is(err, ErrOverlap) hold.
func (e *OverlapError) Is(target error) bool {
	return target == ErrOverlap
}

// PersistenceError wraps a failure of the persistence backend.
// The registry is unchanged and the call is not retried.
type PersistenceError struct {
	Op  string // "create" or "delete"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrPersistence, e.Op, e.Err)
}

// Unwrap returns the backend error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPersistence) hold.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
