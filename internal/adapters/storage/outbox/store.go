package outbox

import (
	"context"

	domain "academy/internal/domain/outbox"
)

// Store persists notification outbox entries.
type Store interface {
	// GetByID retrieves an entry.
	// POST: Returns ErrNotFound when no entry has the ID
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save inserts or updates an entry.
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries still to be delivered, oldest first.
	// PRE: limit > 0
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListPendingFrom is ListPending skipping the first offset entries.
	// PRE: offset >= 0, limit > 0
	ListPendingFrom(ctx context.Context, offset, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that exhausted their attempts, most
	// recently attempted first.
	// PRE: limit > 0
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// CountByStatus returns the number of entries per status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}
