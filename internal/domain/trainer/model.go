package trainer

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyFirstName = errors.New("trainer first name cannot be empty")
	ErrEmptyLastName  = errors.New("trainer last name cannot be empty")
	ErrInvalidEmail   = errors.New("trainer email must be valid")
	ErrNotFound       = errors.New("trainer not found")
)

// Trainer is the person delivering a session.
// Sessions reference trainers read-only; trainers are managed elsewhere.
type Trainer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	CreatedAt time.Time
}

// Validate checks if the Trainer has valid data.
// PRE: Trainer struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Trainer) Validate() error {
	if strings.TrimSpace(t.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(t.LastName) == "" {
		return ErrEmptyLastName
	}
	if !strings.Contains(t.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// FullName returns "First Last".
func (t Trainer) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// IsZero reports whether no trainer has been selected.
func (t Trainer) IsZero() bool {
	return t.ID == 0 && t.FirstName == "" && t.LastName == ""
}
