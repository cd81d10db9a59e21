package session_test

import (
	"strings"
	"testing"
	"time"

	"academy/internal/domain/session"
	"academy/internal/domain/trainer"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var alice = trainer.Trainer{ID: 7, FirstName: "Alice", LastName: "Martin", Email: "alice@example.com"}

// TestSession_Validate tests validation of Session.
func TestSession_Validate(t *testing.T) {
	valid := session.Session{
		Description: "Go basics",
		StartAt:     date(2024, 1, 1),
		EndAt:       date(2024, 1, 5),
		Trainer:     alice,
	}

	tests := []struct {
		name    string
		mutate  func(*session.Session)
		wantErr error
	}{
		{name: "valid session", mutate: func(*session.Session) {}},
		{name: "single day", mutate: func(s *session.Session) { s.EndAt = s.StartAt }},
		{name: "empty description", mutate: func(s *session.Session) { s.Description = "  " }, wantErr: session.ErrEmptyDescription},
		{name: "description too long", mutate: func(s *session.Session) { s.Description = strings.Repeat("a", 201) }, wantErr: session.ErrDescriptionTooLong},
		{name: "zero start", mutate: func(s *session.Session) { s.StartAt = time.Time{} }, wantErr: session.ErrEmptyStartAt},
		{name: "zero end", mutate: func(s *session.Session) { s.EndAt = time.Time{} }, wantErr: session.ErrEmptyEndAt},
		{name: "end before start", mutate: func(s *session.Session) { s.EndAt = date(2023, 12, 31) }, wantErr: session.ErrInvalidDates},
		{name: "no trainer", mutate: func(s *session.Session) { s.Trainer = trainer.Trainer{} }, wantErr: session.ErrMissingTrainer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if err := s.Validate(); err != tt.wantErr {
				t.Errorf("Session.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestSession_Matches tests the case-insensitive list filter.
func TestSession_Matches(t *testing.T) {
	s := session.Session{
		Description: "Docker Fundamentals",
		StartAt:     date(2024, 3, 4),
		EndAt:       date(2024, 3, 8),
		Trainer:     alice,
	}

	tests := []struct {
		filter string
		want   bool
	}{
		{"", true},
		{"docker", true},
		{"FUNDAMENTALS", true},
		{"2024-03-04", true},
		{"2024-03-08", true},
		{"alice", true},
		{"Martin", true},
		{"kubernetes", false},
		{"2024-03-05", false},
	}

	for _, tt := range tests {
		if got := s.Matches(tt.filter); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.filter, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-01-10", want: date(2024, 1, 10)},
		{in: "2024-01-10T15:30:00Z", want: date(2024, 1, 10)},
		{in: " 2024-02-29 ", want: date(2024, 2, 29)},
		{in: "10/01/2024", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := session.ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"go basics":   "Go basics",
		"Go":          "Go",
		"élaboration": "Élaboration",
	}
	for in, want := range tests {
		if got := session.Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
