package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"academy/internal/application/scheduling"
	"academy/internal/domain/promotion"
	"academy/internal/domain/session"
	"academy/internal/domain/trainer"
)

// ErrInvalidSessionInput wraps input that cannot be turned into a session.
var ErrInvalidSessionInput = errors.New("invalid session input")

// PromotionLookup finds a promotion by ID.
type PromotionLookup interface {
	GetByID(ctx context.Context, id int64) (promotion.Promotion, error)
}

// TrainerLookup finds a trainer by ID.
type TrainerLookup interface {
	GetByID(ctx context.Context, id int64) (trainer.Trainer, error)
}

// RegistryProvider hands out the registry of a promotion.
type RegistryProvider interface {
	For(ctx context.Context, promotionID int64) (*scheduling.Registry, error)
}

// ScheduleSessionInput carries the fields of the session form.
type ScheduleSessionInput struct {
	PromotionID int64
	Description string
	StartAt     string // YYYY-MM-DD or RFC 3339
	EndAt       string
	TrainerID   int64
}

// ScheduleSessionDeps holds dependencies for ExecuteScheduleSession.
type ScheduleSessionDeps struct {
	Promotions PromotionLookup
	Trainers   TrainerLookup
	Registries RegistryProvider
}

// ExecuteScheduleSession resolves the form input and adds the session to
// the promotion's registry.
// PRE: input.PromotionID > 0
// POST: On success the session is persisted and listed with its durable ID.
// Returns promotion.ErrNotFound, trainer.ErrNotFound, ErrInvalidSessionInput,
// a session validation error, or a registry OverlapError/PersistenceError.
func ExecuteScheduleSession(ctx context.Context, input ScheduleSessionInput, deps ScheduleSessionDeps) (session.Session, error) {
	if _, err := deps.Promotions.GetByID(ctx, input.PromotionID); err != nil {
		return session.Session{}, err
	}

	startAt, err := session.ParseDate(input.StartAt)
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: start: %v", ErrInvalidSessionInput, err)
	}
	endAt, err := session.ParseDate(input.EndAt)
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: end: %v", ErrInvalidSessionInput, err)
	}
	if input.TrainerID <= 0 {
		return session.Session{}, session.ErrMissingTrainer
	}
	tr, err := deps.Trainers.GetByID(ctx, input.TrainerID)
	if err != nil {
		return session.Session{}, err
	}

	reg, err := deps.Registries.For(ctx, input.PromotionID)
	if err != nil {
		return session.Session{}, err
	}

	candidate := session.Session{
		PromotionID: input.PromotionID,
		Description: session.Capitalize(input.Description),
		StartAt:     startAt,
		EndAt:       endAt,
		Trainer:     tr,
	}
	added, err := reg.Add(ctx, candidate)
	if err != nil {
		return session.Session{}, err
	}
	slog.Info("session_scheduled", "promotion_id", input.PromotionID, "session_id", added.ID, "trainer_id", tr.ID)
	return added, nil
}

// UnscheduleSessionDeps holds dependencies for ExecuteUnscheduleSession.
type UnscheduleSessionDeps struct {
	Promotions PromotionLookup
	Registries RegistryProvider
}

// ExecuteUnscheduleSession removes a session from a promotion's registry.
// PRE: promotionID > 0
// POST: Returns whether a session with sessionID was listed and removed
func ExecuteUnscheduleSession(ctx context.Context, promotionID, sessionID int64, deps UnscheduleSessionDeps) (bool, error) {
	if _, err := deps.Promotions.GetByID(ctx, promotionID); err != nil {
		return false, err
	}
	reg, err := deps.Registries.For(ctx, promotionID)
	if err != nil {
		return false, err
	}
	return reg.Remove(ctx, sessionID), nil
}
