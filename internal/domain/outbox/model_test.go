package outbox

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  error
	}{
		{"valid", NewEntry("id-1", ActionSessionAssigned, `{}`, t0), nil},
		{"missing id", NewEntry("", ActionSessionAssigned, `{}`, t0), ErrEmptyID},
		{"missing action", NewEntry("id-1", "", `{}`, t0), ErrEmptyActionType},
		{"missing payload", NewEntry("id-1", ActionSessionAssigned, "", t0), ErrEmptyPayload},
		{"missing created", NewEntry("id-1", ActionSessionAssigned, `{}`, time.Time{}), ErrMissingCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEntry_ValidateDefaultsMaxAttempts(t *testing.T) {
	e := NewEntry("id-1", ActionSessionCancelled, `{}`, t0)
	e.MaxAttempts = 0
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if e.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", e.MaxAttempts, DefaultMaxAttempts)
	}
}

func TestEntry_Lifecycle(t *testing.T) {
	e := NewEntry("id-1", ActionSessionAssigned, `{}`, t0)
	e.MaxAttempts = 2

	e.MarkAttempt(t0)
	e.MarkFailed(errors.New("smtp down"))
	if e.Status != StatusRetrying || e.IsTerminal() {
		t.Fatalf("after 1 failure status = %s terminal = %v", e.Status, e.IsTerminal())
	}

	e.MarkAttempt(t0.Add(time.Minute))
	e.MarkFailed(errors.New("smtp down"))
	if e.Status != StatusFailed || !e.IsTerminal() {
		t.Fatalf("after 2 failures status = %s terminal = %v", e.Status, e.IsTerminal())
	}
	if e.ErrorMessage != "smtp down" {
		t.Errorf("ErrorMessage = %q", e.ErrorMessage)
	}
}

func TestEntry_MarkSuccessClearsError(t *testing.T) {
	e := NewEntry("id-1", ActionSessionAssigned, `{}`, t0)
	e.MarkAttempt(t0)
	e.MarkFailed(errors.New("boom"))
	e.MarkSuccess("msg-42")
	if e.Status != StatusDone || e.ExternalID != "msg-42" || e.ErrorMessage != "" {
		t.Errorf("entry = %+v", e)
	}
	if !e.IsTerminal() {
		t.Error("done entry should be terminal")
	}
}

func TestEntry_NextRetryDelay(t *testing.T) {
	base, maxDelay := 30*time.Second, 10*time.Minute
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{3, 4 * time.Minute},
		{5, maxDelay},
		{64, maxDelay},
	}
	for _, tt := range tests {
		e := Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(base, maxDelay); got != tt.want {
			t.Errorf("attempts=%d: NextRetryDelay = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestEntry_ReadyAt(t *testing.T) {
	base, maxDelay := 30*time.Second, time.Hour
	fresh := NewEntry("id-1", ActionSessionAssigned, `{}`, t0)
	if !fresh.ReadyAt(t0, base, maxDelay) {
		t.Error("never-attempted entry should be ready")
	}

	attempted := fresh
	attempted.MarkAttempt(t0) // Attempts=1, delay 1m
	if attempted.ReadyAt(t0.Add(59*time.Second), base, maxDelay) {
		t.Error("entry should still be backing off")
	}
	if !attempted.ReadyAt(t0.Add(time.Minute), base, maxDelay) {
		t.Error("entry should be ready once delay elapsed")
	}
}
