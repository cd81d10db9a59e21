package scheduling

import (
	"context"
	"fmt"
	"sync"

	"academy/internal/domain/session"
)

// SessionLoader reads the sessions already scheduled for a promotion.
type SessionLoader interface {
	ListByPromotion(ctx context.Context, promotionID int64) ([]session.Session, error)
}

// Registries hands out one Registry per promotion, hydrating it from the
// loader on first use.
type Registries struct {
	mu          sync.Mutex
	byPromotion map[int64]*Registry
	loader      SessionLoader
	deps        RegistryDeps
}

// NewRegistries creates an empty set of registries sharing deps.
// PRE: loader and deps.Persistence are non-nil
// POST: Returns a ready-to-use Registries
func NewRegistries(loader SessionLoader, deps RegistryDeps) *Registries {
	return &Registries{
		byPromotion: make(map[int64]*Registry),
		loader:      loader,
		deps:        deps,
	}
}

// For returns the registry of promotionID, loading it if needed.
// The loader runs without the lock so a slow backend only delays callers
// of the same promotion; when two loads race, the first one stored wins.
// PRE: promotionID > 0
// POST: Subsequent calls return the same *Registry until Forget
func (rs *Registries) For(ctx context.Context, promotionID int64) (*Registry, error) {
	rs.mu.Lock()
	reg, ok := rs.byPromotion[promotionID]
	rs.mu.Unlock()
	if ok {
		return reg, nil
	}

	existing, err := rs.loader.ListByPromotion(ctx, promotionID)
	if err != nil {
		return nil, fmt.Errorf("load sessions for promotion %d: %w", promotionID, err)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if reg, ok := rs.byPromotion[promotionID]; ok {
		return reg, nil
	}
	reg = NewRegistry(promotionID, rs.deps, existing...)
	rs.byPromotion[promotionID] = reg
	return reg, nil
}

// Forget drops the cached registry so the next For reloads it.
func (rs *Registries) Forget(promotionID int64) {
	rs.mu.Lock()
	delete(rs.byPromotion, promotionID)
	rs.mu.Unlock()
}
