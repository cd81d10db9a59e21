package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	_ "modernc.org/sqlite"

	emailPkg "academy/internal/adapters/email"
	web "academy/internal/adapters/http"
	"academy/internal/adapters/http/perf"
	"academy/internal/adapters/restapi"
	"academy/internal/adapters/storage"
	auditStorePkg "academy/internal/adapters/storage/audit"
	outboxStorePkg "academy/internal/adapters/storage/outbox"
	promotionStorePkg "academy/internal/adapters/storage/promotion"
	sessionStorePkg "academy/internal/adapters/storage/session"
	traineeStorePkg "academy/internal/adapters/storage/trainee"
	trainerStorePkg "academy/internal/adapters/storage/trainer"
	"academy/internal/application/orchestrators"
	"academy/internal/application/scheduling"
	"academy/internal/config"
	"academy/internal/domain/outbox"
	"academy/internal/domain/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 15 * time.Second

// sessionBackend is what the registries need from a session backend.
type sessionBackend interface {
	scheduling.Persistence
	scheduling.SessionLoader
}

func main() {
	configPath := flag.String("config", os.Getenv("ACADEMY_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// WAL mode, foreign keys and busy timeout on every pooled connection
	dsn := cfg.Database.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db, cfg.Database.Path); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	collector := perf.NewCollector()
	timedDB := storage.NewTimedDB(db, collector, cfg.Database.SlowQuery)

	promotions := promotionStorePkg.NewSQLiteStore(timedDB)
	trainees := traineeStorePkg.NewSQLiteStore(timedDB)
	outboxStore := outboxStorePkg.NewSQLiteStore(timedDB)
	historyStore := auditStorePkg.NewSQLiteStore(timedDB)

	health := []web.HealthCheck{{Name: "database", Check: timedDB.PingContext}}

	var (
		trainers trainerStorePkg.Store
		backend  sessionBackend
	)
	switch cfg.Scheduling.Backend {
	case config.BackendREST:
		client, err := restapi.New(cfg.Scheduling.RESTBaseURL)
		if err != nil {
			log.Fatalf("failed to create REST client: %v", err)
		}
		trainers = client.Trainers()
		backend = client
		health = append(health, web.HealthCheck{Name: "sessions_backend", Check: func(context.Context) error {
			if client.State() == gobreaker.StateOpen {
				return restapi.ErrUnavailable
			}
			return nil
		}})
	default:
		trainers = trainerStorePkg.NewSQLiteStore(timedDB)
		backend = sessionStorePkg.NewSQLiteStore(timedDB)
		if !cfg.IsProduction() {
			if err := orchestrators.ExecuteSeedDemo(context.Background(), orchestrators.SeedDemoDeps{
				Trainers:   trainers,
				Promotions: promotions,
				Now:        time.Now,
			}); err != nil {
				slog.Warn("seed_failed", "error", err)
			}
		}
	}

	rule, err := session.RuleByName(cfg.Scheduling.OverlapRule)
	if err != nil {
		log.Fatalf("invalid overlap rule: %v", err)
	}

	notifier := &orchestrators.SessionNotifier{
		Outbox:     outboxStore,
		GenerateID: uuid.NewString,
		Now:        time.Now,
	}
	history := &orchestrators.ScheduleHistory{
		Store:      historyStore,
		GenerateID: uuid.NewString,
		Now:        time.Now,
	}
	registries := scheduling.NewRegistries(backend, scheduling.RegistryDeps{
		Persistence: backend,
		Rule:        rule,
		Metrics:     collector,
		OnAdded:     orchestrators.FanOut(notifier.OnAdded, history.OnAdded),
		OnRemoved:   orchestrators.FanOut(notifier.OnRemoved, history.OnRemoved),
	})

	var sender emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "hint", "set ACADEMY_RESEND_KEY to deliver trainer notifications")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}
	executor := &orchestrators.EmailExecutor{Sender: sender}
	processor := orchestrators.NewOutboxProcessor(outboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionSessionAssigned:  executor,
		outbox.ActionSessionCancelled: executor,
	}, collector)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerDone := orchestrators.StartBackgroundWorker(ctx, processor, cfg.Outbox.Interval)

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		log.Fatalf("invalid csrf key: %v", err)
	}
	handler, err := web.NewMux(ctx, web.Deps{
		Trainers:   trainers,
		Trainees:   trainees,
		Promotions: promotions,
		Registries: registries,
		History:    historyStore,
		Outbox:     outboxStore,
		Processor:  processor,
		Collector:  collector,
		Health:     health,
	}, web.Options{
		CSRFKey:       csrfKey,
		SecureCookies: cfg.IsProduction(),
		RateLimit:     cfg.HTTP.RateLimit,
		RateBurst:     cfg.HTTP.RateBurst,
		SlowRequest:   cfg.HTTP.SlowRequest,
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("server_starting",
		"version", version,
		"addr", cfg.Listen,
		"env", cfg.Env,
		"schema", storage.LatestSchemaVersion(),
		"backend", cfg.Scheduling.Backend,
		"overlap_rule", cfg.Scheduling.OverlapRule,
	)

	if err := serve(ctx, srv); err != nil {
		log.Fatalf("server failed: %v", err)
	}
	<-workerDone
	slog.Info("server_stopped")
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
