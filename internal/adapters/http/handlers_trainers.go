package web

import (
	"net/http"
	"strings"
	"time"

	"academy/internal/domain/trainer"
)

type trainerJSON struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func newTrainerJSON(t trainer.Trainer) trainerJSON {
	return trainerJSON{
		ID:        t.ID,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		Email:     t.Email,
		CreatedAt: t.CreatedAt,
	}
}

type createTrainerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (s *server) handleListTrainers(w http.ResponseWriter, r *http.Request) {
	trainers, err := s.Trainers.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]trainerJSON, 0, len(trainers))
	for _, t := range trainers {
		out = append(out, newTrainerJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGetTrainer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid trainer id")
		return
	}
	t, err := s.Trainers.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTrainerJSON(t))
}

// handleCreateTrainer registers a trainer so sessions can reference them.
func (s *server) handleCreateTrainer(w http.ResponseWriter, r *http.Request) {
	var req createTrainerRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t := trainer.Trainer{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		CreatedAt: time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		respondError(w, err)
		return
	}
	id, err := s.Trainers.Create(r.Context(), t)
	if err != nil {
		respondError(w, err)
		return
	}
	t.ID = id
	writeJSON(w, http.StatusCreated, newTrainerJSON(t))
}
