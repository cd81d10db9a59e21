package web

import (
	"net/http"
	"strings"
	"time"

	"academy/internal/domain/promotion"
	"academy/internal/domain/session"
)

type promotionJSON struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	StartAt string `json:"start_at,omitempty"`
	EndAt   string `json:"end_at,omitempty"`
}

func newPromotionJSON(p promotion.Promotion) promotionJSON {
	return promotionJSON{
		ID:      p.ID,
		Name:    p.Name,
		StartAt: formatOptionalDate(p.StartAt),
		EndAt:   formatOptionalDate(p.EndAt),
	}
}

func formatOptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(session.DateFormat)
}

type createPromotionRequest struct {
	Name    string `json:"name"`
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

func (s *server) handleListPromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := s.Promotions.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]promotionJSON, 0, len(promotions))
	for _, p := range promotions {
		out = append(out, newPromotionJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGetPromotion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	p, err := s.Promotions.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPromotionJSON(p))
}

// handleCreatePromotion creates a promotion. Dates are optional.
func (s *server) handleCreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req createPromotionRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p := promotion.Promotion{Name: strings.TrimSpace(req.Name)}
	for _, d := range []struct {
		raw string
		dst *time.Time
	}{{req.StartAt, &p.StartAt}, {req.EndAt, &p.EndAt}} {
		if d.raw == "" {
			continue
		}
		parsed, err := session.ParseDate(d.raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
			return
		}
		*d.dst = parsed
	}
	if err := p.Validate(); err != nil {
		respondError(w, err)
		return
	}

	id, err := s.Promotions.Create(r.Context(), p)
	if err != nil {
		internalError(w, err)
		return
	}
	p.ID = id
	writeJSON(w, http.StatusCreated, newPromotionJSON(p))
}
