package promotion

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("promotion name cannot be empty")
	ErrInvalidDates = errors.New("start date must be before or equal to end date")
	ErrNotFound     = errors.New("promotion not found")
)

// Promotion is a cohort of trainees sharing a set of scheduled sessions.
type Promotion struct {
	ID      int64
	Name    string
	StartAt time.Time // optional
	EndAt   time.Time // optional
}

// Validate checks if the Promotion has valid data.
// PRE: Promotion struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Promotion) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.StartAt.IsZero() && !p.EndAt.IsZero() && p.StartAt.After(p.EndAt) {
		return ErrInvalidDates
	}
	return nil
}
