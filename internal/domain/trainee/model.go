package trainee

import (
	"errors"
	"strings"
	"time"
)

// MaxNameLength bounds user-editable name fields.
const MaxNameLength = 100

// Domain errors
var (
	ErrEmptyFirstName = errors.New("trainee first name cannot be empty")
	ErrEmptyLastName  = errors.New("trainee last name cannot be empty")
	ErrNameTooLong    = errors.New("trainee name cannot exceed 100 characters")
	ErrInvalidEmail   = errors.New("trainee email must be valid")
	ErrNotFound       = errors.New("trainee not found")
)

// Trainee is a person enrolled in a promotion.
type Trainee struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	PromotionID int64 // 0 when not yet assigned
	CreatedAt   time.Time
}

// Validate checks if the Trainee has valid data.
// PRE: Trainee struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: Email must contain '@'
func (t *Trainee) Validate() error {
	if strings.TrimSpace(t.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(t.LastName) == "" {
		return ErrEmptyLastName
	}
	if len(t.FirstName) > MaxNameLength || len(t.LastName) > MaxNameLength {
		return ErrNameTooLong
	}
	if !strings.Contains(t.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// Matches reports whether the trainee's name or email contains query,
// ignoring case. An empty query matches every trainee.
func (t *Trainee) Matches(query string) bool {
	if query == "" {
		return true
	}
	haystack := strings.ToLower(t.FirstName + " " + t.LastName + " " + t.Email)
	return strings.Contains(haystack, strings.ToLower(query))
}
