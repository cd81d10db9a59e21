package web

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"academy/internal/adapters/http/middleware"
	"academy/internal/adapters/http/perf"
	auditStore "academy/internal/adapters/storage/audit"
	outboxStore "academy/internal/adapters/storage/outbox"
	promotionStore "academy/internal/adapters/storage/promotion"
	traineeStore "academy/internal/adapters/storage/trainee"
	trainerStore "academy/internal/adapters/storage/trainer"
	"academy/internal/application/orchestrators"
	"academy/internal/application/scheduling"
)

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps holds everything the handlers reach.
type Deps struct {
	Trainers   trainerStore.Store
	Trainees   traineeStore.Store
	Promotions promotionStore.Store
	Registries *scheduling.Registries
	History    auditStore.Store
	Outbox     outboxStore.Store
	Processor  *orchestrators.OutboxProcessor
	Collector  *perf.Collector
	Health     []HealthCheck
}

// Options tunes the middleware stack.
type Options struct {
	// CSRFKey is 32 bytes; nil means a random key for this process.
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	RateLimit      float64 // requests per second per IP
	RateBurst      int
	SlowRequest    time.Duration
}

// Rate limit defaults applied when Options leaves them at zero.
const (
	DefaultRateLimit = 10
	DefaultRateBurst = 20
)

// server binds handlers to their dependencies.
type server struct {
	Deps
}

// NewMux wires the JSON API and its middleware.
// PRE: deps stores, Registries and Processor are non-nil; Collector may be nil
// POST: Returns a handler; the rate limiter sweeper stops when ctx ends
func NewMux(ctx context.Context, deps Deps, opts Options) (http.Handler, error) {
	csrfKey := opts.CSRFKey
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		slog.Warn("csrf_key_random", "hint", "set ACADEMY_CSRF_KEY so form tokens survive restarts")
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = DefaultRateBurst
	}

	s := &server{Deps: deps}
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	limiter := middleware.NewRateLimiter(opts.RateLimit, opts.RateBurst)
	limiter.StartSweeper(ctx)

	// Timing sits next to the mux so it sees the matched route pattern.
	return middleware.Chain(mux,
		middleware.Timing(deps.Collector, opts.SlowRequest),
		middleware.CSRF(csrfKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.SecurityHeaders,
	), nil
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.Collector.Handler())

	mux.HandleFunc("GET /api/trainers", s.handleListTrainers)
	mux.HandleFunc("POST /api/trainers", s.handleCreateTrainer)
	mux.HandleFunc("GET /api/trainers/{id}", s.handleGetTrainer)

	mux.HandleFunc("GET /api/trainees", s.handleListTrainees)
	mux.HandleFunc("POST /api/trainees", s.handleCreateTrainee)
	mux.HandleFunc("GET /api/trainees/{id}", s.handleGetTrainee)
	mux.HandleFunc("PUT /api/trainees/{id}", s.handleUpdateTrainee)

	mux.HandleFunc("GET /api/promotions", s.handleListPromotions)
	mux.HandleFunc("POST /api/promotions", s.handleCreatePromotion)
	mux.HandleFunc("GET /api/promotions/{id}", s.handleGetPromotion)

	mux.HandleFunc("GET /api/promotions/{id}/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/promotions/{id}/sessions", s.handleScheduleSession)
	mux.HandleFunc("DELETE /api/promotions/{id}/sessions/{sessionID}", s.handleUnscheduleSession)
	mux.HandleFunc("GET /api/promotions/{id}/history", s.handleListHistory)

	mux.HandleFunc("GET /api/outbox", s.handleListOutbox)
	mux.HandleFunc("GET /api/outbox/stats", s.handleOutboxStats)
	mux.HandleFunc("POST /api/outbox/{id}/retry", s.handleRetryOutbox)
	mux.HandleFunc("POST /api/outbox/{id}/abandon", s.handleAbandonOutbox)
}
