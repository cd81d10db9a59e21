package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"academy/internal/domain/trainer"
)

// DateFormat is the calendar-date layout used for display, search and storage.
const DateFormat = "2006-01-02"

// MaxDescriptionLength bounds the free-text description.
const MaxDescriptionLength = 200

// Domain errors
var (
	ErrEmptyDescription   = errors.New("session description cannot be empty")
	ErrDescriptionTooLong = errors.New("session description cannot exceed 200 characters")
	ErrEmptyStartAt       = errors.New("session start date cannot be zero")
	ErrEmptyEndAt         = errors.New("session end date cannot be zero")
	ErrInvalidDates       = errors.New("session start date must be before or equal to end date")
	ErrMissingTrainer     = errors.New("session must reference a trainer")
)

// Session is a scheduled teaching event with a date range and a trainer.
// ID is zero until the persistence backend has assigned a durable one.
type Session struct {
	ID          int64
	PromotionID int64
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Trainer     trainer.Trainer
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: StartAt <= EndAt (same day allowed)
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(s.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if s.StartAt.IsZero() {
		return ErrEmptyStartAt
	}
	if s.EndAt.IsZero() {
		return ErrEmptyEndAt
	}
	if Day(s.StartAt).After(Day(s.EndAt)) {
		return ErrInvalidDates
	}
	if s.Trainer.IsZero() {
		return ErrMissingTrainer
	}
	return nil
}

// IsPending reports whether the session has not been persisted yet.
func (s Session) IsPending() bool {
	return s.ID == 0
}

// SearchText is the lower-cased text a list filter is matched against:
// description, both dates, then the trainer's first and last name.
func (s Session) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		s.Description,
		s.StartAt.Format(DateFormat),
		s.EndAt.Format(DateFormat),
		s.Trainer.FirstName,
		s.Trainer.LastName,
	}, " "))
}

// Matches reports whether filter is a case-insensitive substring of SearchText.
// An empty filter matches every session.
func (s Session) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(s.SearchText(), strings.ToLower(filter))
}

// String renders the session for logs.
func (s Session) String() string {
	return fmt.Sprintf("%q %s..%s", s.Description, s.StartAt.Format(DateFormat), s.EndAt.Format(DateFormat))
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a YYYY-MM-DD date or an RFC 3339 timestamp, the two
// shapes date inputs arrive in, and returns the calendar date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateFormat, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s", value, DateFormat)
	}
	return Day(t), nil
}

// Capitalize upper-cases the first letter of a description.
func Capitalize(description string) string {
	r, size := utf8.DecodeRuneInString(description)
	if r == utf8.RuneError {
		return description
	}
	return string(unicode.ToUpper(r)) + description[size:]
}
