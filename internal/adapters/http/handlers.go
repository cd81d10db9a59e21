package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"academy/internal/adapters/restapi"
	outboxStore "academy/internal/adapters/storage/outbox"
	"academy/internal/application/orchestrators"
	"academy/internal/application/scheduling"
	outboxDomain "academy/internal/domain/outbox"
	"academy/internal/domain/promotion"
	"academy/internal/domain/session"
	"academy/internal/domain/trainee"
	"academy/internal/domain/trainer"
)

// healthTimeout bounds each dependency probe.
const healthTimeout = 2 * time.Second

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// badRequestErrors are the domain errors caused by client input.
var badRequestErrors = []error{
	orchestrators.ErrInvalidSessionInput,
	session.ErrEmptyDescription,
	session.ErrDescriptionTooLong,
	session.ErrEmptyStartAt,
	session.ErrEmptyEndAt,
	session.ErrInvalidDates,
	session.ErrMissingTrainer,
	trainer.ErrEmptyFirstName,
	trainer.ErrEmptyLastName,
	trainer.ErrInvalidEmail,
	trainee.ErrEmptyFirstName,
	trainee.ErrEmptyLastName,
	trainee.ErrNameTooLong,
	trainee.ErrInvalidEmail,
	promotion.ErrEmptyName,
	promotion.ErrInvalidDates,
}

var notFoundErrors = []error{
	trainer.ErrNotFound,
	trainee.ErrNotFound,
	promotion.ErrNotFound,
	outboxStore.ErrNotFound,
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// isUniqueViolation reports whether err comes from a SQLite UNIQUE constraint.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// respondError maps domain and application errors onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	var overlap *scheduling.OverlapError
	switch {
	case errors.As(err, &overlap):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    scheduling.ErrOverlap.Error(),
			"conflict": newSessionJSON(overlap.Existing),
		})
		return
	case errors.Is(err, restapi.ErrUnavailable):
		// An open breaker also surfaces wrapped in a PersistenceError.
		writeError(w, http.StatusServiceUnavailable, "session backend unavailable, nothing was saved")
		return
	case errors.Is(err, scheduling.ErrPersistence):
		slog.Error("session_backend_failed", "error", err)
		writeError(w, http.StatusBadGateway, "session backend failed, nothing was saved")
		return
	case errors.Is(err, outboxDomain.ErrTerminal):
		writeError(w, http.StatusConflict, err.Error())
		return
	case isUniqueViolation(err):
		writeError(w, http.StatusConflict, "email already in use")
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusNotFound, target.Error())
			return
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	internalError(w, err)
}

// handleHealth probes every registered dependency.
// Returns 200 when all checks pass, 503 otherwise.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.Health))
	healthy := true
	for _, hc := range s.Health {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		err := hc.Check(ctx)
		cancel()
		if err != nil {
			healthy = false
			checks[hc.Name] = err.Error()
			slog.Warn("health_check_failed", "check", hc.Name, "error", err)
			continue
		}
		checks[hc.Name] = "ok"
	}

	body := map[string]any{"status": "ok", "checks": checks}
	if s.Outbox != nil {
		if counts, err := s.Outbox.CountByStatus(r.Context()); err == nil {
			body["outbox"] = counts
		}
	}
	status := http.StatusOK
	if !healthy {
		body["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}
