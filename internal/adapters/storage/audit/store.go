package audit

import (
	"context"

	domain "academy/internal/domain/audit"
)

// Store persists schedule history events.
type Store interface {
	// Save persists an audit event.
	// PRE: event has been validated
	Save(ctx context.Context, event domain.Event) error

	// ListByPromotion returns a promotion's events, newest first.
	// PRE: limit > 0
	ListByPromotion(ctx context.Context, promotionID int64, limit int) ([]domain.Event, error)
}

var _ Store = (*SQLiteStore)(nil)
