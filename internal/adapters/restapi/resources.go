package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"academy/internal/domain/session"
	"academy/internal/domain/trainer"
)

// formateur is the backend's trainer resource.
type formateur struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (f formateur) toDomain() trainer.Trainer {
	t := trainer.Trainer{ID: f.ID, FirstName: f.FirstName, LastName: f.LastName, Email: f.Email}
	if f.CreatedAt != "" {
		t.CreatedAt, _ = session.ParseDate(f.CreatedAt)
	}
	return t
}

func fromTrainer(t trainer.Trainer) formateur {
	f := formateur{ID: t.ID, FirstName: t.FirstName, LastName: t.LastName, Email: t.Email}
	if !t.CreatedAt.IsZero() {
		f.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339)
	}
	return f
}

// sessionResource is the backend's session resource. Dates travel as
// RFC 3339 timestamps, the way the browser's toISOString produced them.
type sessionResource struct {
	ID          int64     `json:"id,omitempty"`
	PromotionID int64     `json:"promotionId,omitempty"`
	Desc        string    `json:"desc"`
	StartAt     string    `json:"startAt"`
	EndAt       string    `json:"endAt"`
	Formateur   formateur `json:"formateur"`
}

func (r sessionResource) toDomain() (session.Session, error) {
	start, err := session.ParseDate(r.StartAt)
	if err != nil {
		return session.Session{}, fmt.Errorf("session %d: %w", r.ID, err)
	}
	end, err := session.ParseDate(r.EndAt)
	if err != nil {
		return session.Session{}, fmt.Errorf("session %d: %w", r.ID, err)
	}
	return session.Session{
		ID:          r.ID,
		PromotionID: r.PromotionID,
		Description: r.Desc,
		StartAt:     start,
		EndAt:       end,
		Trainer:     r.Formateur.toDomain(),
	}, nil
}

type created struct {
	ID int64 `json:"id"`
}

// CreateSession posts s and returns the ID the backend assigned.
// PRE: s has been validated; s.ID is zero
// POST: Returns the backend ID, zero only if the backend sent none
func (c *Client) CreateSession(ctx context.Context, s session.Session) (int64, error) {
	in := sessionResource{
		PromotionID: s.PromotionID,
		Desc:        s.Description,
		StartAt:     session.Day(s.StartAt).Format(time.RFC3339),
		EndAt:       session.Day(s.EndAt).Format(time.RFC3339),
		Formateur:   fromTrainer(s.Trainer),
	}
	var out created
	if err := c.do(ctx, "POST", "sessions", nil, in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// DeleteSession deletes a session by ID.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", "sessions/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// ListByPromotion returns a promotion's sessions in backend order.
func (c *Client) ListByPromotion(ctx context.Context, promotionID int64) ([]session.Session, error) {
	var out []sessionResource
	q := url.Values{"promotionId": {strconv.FormatInt(promotionID, 10)}}
	if err := c.do(ctx, "GET", "sessions", q, nil, &out); err != nil {
		return nil, err
	}
	sessions := make([]session.Session, 0, len(out))
	for _, r := range out {
		s, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		if s.PromotionID == 0 {
			s.PromotionID = promotionID
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// Trainers returns the trainer view of the client.
func (c *Client) Trainers() *TrainerSource {
	return &TrainerSource{c: c}
}

// TrainerSource reads and creates trainers on the backend.
type TrainerSource struct {
	c *Client
}

// GetByID returns a trainer.
// POST: Returns trainer.ErrNotFound on a 404
func (t *TrainerSource) GetByID(ctx context.Context, id int64) (trainer.Trainer, error) {
	var out formateur
	err := t.c.do(ctx, "GET", "formateurs/"+strconv.FormatInt(id, 10), nil, nil, &out)
	if isNotFound(err) {
		return trainer.Trainer{}, fmt.Errorf("%w: %d", trainer.ErrNotFound, id)
	}
	if err != nil {
		return trainer.Trainer{}, err
	}
	return out.toDomain(), nil
}

// List returns every trainer.
func (t *TrainerSource) List(ctx context.Context) ([]trainer.Trainer, error) {
	var out []formateur
	if err := t.c.do(ctx, "GET", "formateurs", nil, nil, &out); err != nil {
		return nil, err
	}
	trainers := make([]trainer.Trainer, 0, len(out))
	for _, f := range out {
		trainers = append(trainers, f.toDomain())
	}
	return trainers, nil
}

// Create posts a trainer and returns its backend ID.
func (t *TrainerSource) Create(ctx context.Context, tr trainer.Trainer) (int64, error) {
	var out created
	if err := t.c.do(ctx, "POST", "formateurs", nil, fromTrainer(tr), &out); err != nil {
		return 0, err
	}
	if out.ID == 0 {
		return 0, errors.New("backend returned no trainer id")
	}
	return out.ID, nil
}
