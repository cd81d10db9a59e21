package session

import (
	"context"

	domain "academy/internal/domain/session"
)

// Store persists scheduled sessions. It is the durable backend behind a
// scheduling registry.
type Store interface {
	// CreateSession inserts s and returns the ID SQLite assigned.
	// PRE: s has been validated and carries a promotion and trainer ID
	// POST: Session is persisted under a fresh ID
	CreateSession(ctx context.Context, s domain.Session) (int64, error)

	// DeleteSession removes the session with the given ID.
	// POST: Returns ErrNotFound when no row matched
	DeleteSession(ctx context.Context, id int64) error

	// ListByPromotion returns a promotion's sessions with their trainers,
	// in insertion order.
	ListByPromotion(ctx context.Context, promotionID int64) ([]domain.Session, error)
}
