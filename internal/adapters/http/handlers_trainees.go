package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	traineeStore "academy/internal/adapters/storage/trainee"
	"academy/internal/application/listutil"
	"academy/internal/domain/promotion"
	"academy/internal/domain/trainee"
)

type traineeJSON struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	PromotionID int64     `json:"promotion_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

func newTraineeJSON(t trainee.Trainee) traineeJSON {
	return traineeJSON{
		ID:          t.ID,
		FirstName:   t.FirstName,
		LastName:    t.LastName,
		Email:       t.Email,
		Phone:       t.Phone,
		PromotionID: t.PromotionID,
		CreatedAt:   t.CreatedAt,
	}
}

// traineeRequest is the body of both create and update.
type traineeRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PromotionID int64  `json:"promotion_id"`
}

func (req traineeRequest) apply(t *trainee.Trainee) {
	t.FirstName = strings.TrimSpace(req.FirstName)
	t.LastName = strings.TrimSpace(req.LastName)
	t.Email = strings.TrimSpace(req.Email)
	t.Phone = strings.TrimSpace(req.Phone)
	t.PromotionID = req.PromotionID
}

type traineePage struct {
	Trainees []traineeJSON    `json:"trainees"`
	Page     listutil.PageInfo `json:"page"`
}

// handleListTrainees serves one page of trainees.
// Query: q (search), sort, dir, page, per_page.
func (s *server) handleListTrainees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := listutil.Parse(r.URL.Query(), traineeStore.SortColumns)

	total, err := s.Trainees.Count(ctx, params.Search)
	if err != nil {
		internalError(w, err)
		return
	}
	pageInfo := listutil.NewPageInfo(params.Page, params.PerPage, total)
	params.Page = pageInfo.Page

	trainees, err := s.Trainees.List(ctx, traineeStore.ListFilter{
		Search: params.Search,
		Sort:   params.Sort,
		Desc:   params.Desc,
		Limit:  params.PerPage,
		Offset: params.Offset(),
	})
	if err != nil {
		internalError(w, err)
		return
	}

	out := traineePage{Trainees: make([]traineeJSON, 0, len(trainees)), Page: pageInfo}
	for _, t := range trainees {
		out.Trainees = append(out.Trainees, newTraineeJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGetTrainee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid trainee id")
		return
	}
	t, err := s.Trainees.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTraineeJSON(t))
}

func (s *server) handleCreateTrainee(w http.ResponseWriter, r *http.Request) {
	var req traineeRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t := trainee.Trainee{CreatedAt: time.Now().UTC()}
	req.apply(&t)
	if !s.validTrainee(r.Context(), w, &t) {
		return
	}

	id, err := s.Trainees.Create(r.Context(), t)
	if err != nil {
		respondError(w, err)
		return
	}
	t.ID = id
	writeJSON(w, http.StatusCreated, newTraineeJSON(t))
}

// handleUpdateTrainee replaces the editable fields of a trainee sheet.
// CreatedAt is kept from the stored record.
func (s *server) handleUpdateTrainee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid trainee id")
		return
	}
	var req traineeRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t, err := s.Trainees.GetByID(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	req.apply(&t)
	if !s.validTrainee(ctx, w, &t) {
		return
	}
	if err := s.Trainees.Update(ctx, t); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTraineeJSON(t))
}

// validTrainee validates t and its promotion reference, writing a 400 on failure.
func (s *server) validTrainee(ctx context.Context, w http.ResponseWriter, t *trainee.Trainee) bool {
	if err := t.Validate(); err != nil {
		respondError(w, err)
		return false
	}
	if t.PromotionID == 0 {
		return true
	}
	if _, err := s.Promotions.GetByID(ctx, t.PromotionID); err != nil {
		if errors.Is(err, promotion.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "promotion does not exist")
			return false
		}
		internalError(w, err)
		return false
	}
	return true
}
