package scheduling

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"academy/internal/domain/session"
)

// Persistence is the backend that owns durable session identity.
type Persistence interface {
	// CreateSession stores s and returns the ID the backend assigned.
	CreateSession(ctx context.Context, s session.Session) (int64, error)
	// DeleteSession removes the session with the given ID.
	DeleteSession(ctx context.Context, id int64) error
}

// Metrics counts registry outcomes.
type Metrics interface {
	SessionAdded()
	SessionRemoved()
	OverlapRejected()
	PersistFailed()
}

// RegistryDeps holds dependencies for a Registry.
type RegistryDeps struct {
	Persistence Persistence
	Rule        session.Rule // nil selects session.EndpointContainment
	Metrics     Metrics      // optional
	OnAdded     func(ctx context.Context, s session.Session)
	OnRemoved   func(ctx context.Context, s session.Session)
}

// Registry is the in-memory, ordered set of sessions for one promotion.
// It refuses sessions that overlap an existing one before anything is
// persisted.
//
// The mutex only guards the list. The persistence call in Add runs
// unlocked and nothing provisional is inserted while it is pending, so
// two concurrent Adds can both pass the overlap check. Callers are
// expected to drive a registry from one editor at a time.
type Registry struct {
	mu          sync.Mutex
	promotionID int64
	sessions    []session.Session
	deps        RegistryDeps
	rule        session.Rule
}

// NewRegistry creates a registry for promotionID seeded with existing
// sessions in the given order.
// PRE: deps.Persistence is non-nil
// POST: Returns a registry whose list equals initial
func NewRegistry(promotionID int64, deps RegistryDeps, initial ...session.Session) *Registry {
	rule := deps.Rule
	if rule == nil {
		rule = session.EndpointContainment
	}
	return &Registry{
		promotionID: promotionID,
		sessions:    slices.Clone(initial),
		deps:        deps,
		rule:        rule,
	}
}

// PromotionID returns the promotion this registry schedules.
func (r *Registry) PromotionID() int64 {
	return r.promotionID
}

// Add validates candidate, checks it against every scheduled session and,
// when it fits, persists it and appends it under the durable ID.
// PRE: candidate has dates and a trainer
// POST: On success the finalized session is last in the list and OnAdded
// fired once. On any error the list is unchanged.
// INVARIANT: Persistence is never called for an overlapping candidate
func (r *Registry) Add(ctx context.Context, candidate session.Session) (session.Session, error) {
	if err := candidate.Validate(); err != nil {
		return session.Session{}, err
	}
	if candidate.PromotionID == 0 {
		candidate.PromotionID = r.promotionID
	}

	if existing, found := r.conflict(candidate); found {
		slog.Info("session_overlap_rejected",
			"promotion_id", r.promotionID,
			"candidate", candidate.String(),
			"existing_id", existing.ID,
		)
		if r.deps.Metrics != nil {
			r.deps.Metrics.OverlapRejected()
		}
		return session.Session{}, &OverlapError{Candidate: candidate, Existing: existing}
	}

	id, err := r.deps.Persistence.CreateSession(ctx, candidate)
	if err == nil && id == 0 {
		err = errors.New("backend returned no session id")
	}
	if err != nil {
		slog.Error("session_persist_failed", "promotion_id", r.promotionID, "candidate", candidate.String(), "error", err)
		if r.deps.Metrics != nil {
			r.deps.Metrics.PersistFailed()
		}
		return session.Session{}, &PersistenceError{Op: "create", Err: err}
	}

	created := candidate
	created.ID = id
	// The backend has committed; a departing client must not cut the
	// follow-up work short.
	ctx = context.WithoutCancel(ctx)

	r.mu.Lock()
	r.sessions = append(r.sessions, created)
	r.mu.Unlock()

	slog.Info("session_added", "promotion_id", r.promotionID, "session_id", id, "trainer_id", created.Trainer.ID)
	if r.deps.Metrics != nil {
		r.deps.Metrics.SessionAdded()
	}
	if r.deps.OnAdded != nil {
		r.deps.OnAdded(ctx, created)
	}
	return created, nil
}

// Remove drops the first session with the given ID and asks the backend to
// delete it. A backend failure is logged and otherwise ignored.
// PRE: none
// POST: Returns false and changes nothing when id is not scheduled
func (r *Registry) Remove(ctx context.Context, id int64) bool {
	r.mu.Lock()
	idx := slices.IndexFunc(r.sessions, func(s session.Session) bool { return s.ID == id })
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	removed := r.sessions[idx]
	r.sessions = slices.Delete(r.sessions, idx, idx+1)
	r.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	if err := r.deps.Persistence.DeleteSession(ctx, id); err != nil {
		slog.Warn("session_delete_failed", "promotion_id", r.promotionID, "session_id", id, "error", err)
	}

	slog.Info("session_removed", "promotion_id", r.promotionID, "session_id", id)
	if r.deps.Metrics != nil {
		r.deps.Metrics.SessionRemoved()
	}
	if r.deps.OnRemoved != nil {
		r.deps.OnRemoved(ctx, removed)
	}
	return true
}

// List yields, in insertion order, every session whose search text contains
// filter (case-insensitive). The sequence is lazy and restartable: each
// iteration walks the sessions scheduled when it starts.
func (r *Registry) List(filter string) iter.Seq[session.Session] {
	return func(yield func(session.Session) bool) {
		for _, s := range r.Sessions() {
			if !s.Matches(filter) {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// Sessions returns a copy of the scheduled sessions in insertion order.
func (r *Registry) Sessions() []session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.sessions)
}

// Len returns the number of scheduled sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Get returns the scheduled session with the given ID.
func (r *Registry) Get(id int64) (session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return session.Session{}, false
}

// conflict returns the first scheduled session candidate overlaps.
func (r *Registry) conflict(candidate session.Session) (session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if r.rule(candidate, s) {
			return s, true
		}
	}
	return session.Session{}, false
}
