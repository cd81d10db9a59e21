package trainer

import (
	"context"

	domain "academy/internal/domain/trainer"
)

// Store persists Trainer state.
type Store interface {
	Create(ctx context.Context, t domain.Trainer) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.Trainer, error)
	List(ctx context.Context) ([]domain.Trainer, error)
}
