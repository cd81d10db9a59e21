package promotion

import (
	"context"

	domain "academy/internal/domain/promotion"
)

// Store persists Promotion state.
type Store interface {
	Create(ctx context.Context, p domain.Promotion) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.Promotion, error)
	List(ctx context.Context) ([]domain.Promotion, error)
}
