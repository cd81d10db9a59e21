package web

import (
	"net/http"

	"academy/internal/application/orchestrators"
	"academy/internal/domain/session"
)

type sessionJSON struct {
	ID          int64       `json:"id"`
	PromotionID int64       `json:"promotion_id"`
	Description string      `json:"description"`
	StartAt     string      `json:"start_at"`
	EndAt       string      `json:"end_at"`
	Trainer     trainerJSON `json:"trainer"`
}

func newSessionJSON(s session.Session) sessionJSON {
	return sessionJSON{
		ID:          s.ID,
		PromotionID: s.PromotionID,
		Description: s.Description,
		StartAt:     s.StartAt.Format(session.DateFormat),
		EndAt:       s.EndAt.Format(session.DateFormat),
		Trainer:     newTrainerJSON(s.Trainer),
	}
}

type scheduleSessionRequest struct {
	Description string `json:"description"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	TrainerID   int64  `json:"trainer_id"`
}

// handleListSessions lists a promotion's scheduled sessions in insertion
// order, narrowed by the optional q filter.
func (s *server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	promotionID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	if _, err := s.Promotions.GetByID(ctx, promotionID); err != nil {
		respondError(w, err)
		return
	}
	reg, err := s.Registries.For(ctx, promotionID)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]sessionJSON, 0, reg.Len())
	for sess := range reg.List(r.URL.Query().Get("q")) {
		out = append(out, newSessionJSON(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleScheduleSession adds a session to a promotion.
// Returns 201 with the persisted session, 409 with the conflicting session
// when the dates overlap, or 502 when the backend refused it.
func (s *server) handleScheduleSession(w http.ResponseWriter, r *http.Request) {
	promotionID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	var req scheduleSessionRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	added, err := orchestrators.ExecuteScheduleSession(r.Context(), orchestrators.ScheduleSessionInput{
		PromotionID: promotionID,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		TrainerID:   req.TrainerID,
	}, orchestrators.ScheduleSessionDeps{
		Promotions: s.Promotions,
		Trainers:   s.Trainers,
		Registries: s.Registries,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionJSON(added))
}

// handleUnscheduleSession removes a listed session.
// Returns 204, or 404 when the session is not scheduled in the promotion.
func (s *server) handleUnscheduleSession(w http.ResponseWriter, r *http.Request) {
	promotionID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	sessionID, ok := pathID(r, "sessionID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	removed, err := orchestrators.ExecuteUnscheduleSession(r.Context(), promotionID, sessionID, orchestrators.UnscheduleSessionDeps{
		Promotions: s.Promotions,
		Registries: s.Registries,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "session not scheduled")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
