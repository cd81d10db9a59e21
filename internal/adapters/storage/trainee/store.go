package trainee

import (
	"context"

	domain "academy/internal/domain/trainee"
)

// ListFilter narrows and pages a trainee listing.
type ListFilter struct {
	Search string // matched against name and email, case-insensitive
	Sort   string // last_name (default), first_name or email
	Desc   bool
	Limit  int // 0 means no limit
	Offset int
}

// Store persists Trainee state.
type Store interface {
	Create(ctx context.Context, t domain.Trainee) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.Trainee, error)
	Update(ctx context.Context, t domain.Trainee) error
	List(ctx context.Context, filter ListFilter) ([]domain.Trainee, error)
	Count(ctx context.Context, search string) (int, error)
}

// SortColumns are the columns List may order by.
var SortColumns = []string{"last_name", "first_name", "email"}
