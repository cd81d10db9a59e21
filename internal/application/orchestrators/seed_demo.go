package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"academy/internal/domain/promotion"
	"academy/internal/domain/trainer"
)

// TrainerStoreForSeed defines the store interface needed by SeedDemo.
type TrainerStoreForSeed interface {
	Create(ctx context.Context, t trainer.Trainer) (int64, error)
	List(ctx context.Context) ([]trainer.Trainer, error)
}

// PromotionStoreForSeed defines the store interface needed by SeedDemo.
type PromotionStoreForSeed interface {
	Create(ctx context.Context, p promotion.Promotion) (int64, error)
	List(ctx context.Context) ([]promotion.Promotion, error)
}

// SeedDemoDeps holds dependencies for SeedDemo.
type SeedDemoDeps struct {
	Trainers   TrainerStoreForSeed
	Promotions PromotionStoreForSeed
	Now        func() time.Time
}

// ExecuteSeedDemo creates a few trainers and a promotion on an empty
// database so a development server has something to schedule against.
// PRE: called outside production
// POST: Does nothing when any trainer or promotion already exists
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) error {
	trainers, err := deps.Trainers.List(ctx)
	if err != nil {
		return fmt.Errorf("list trainers: %w", err)
	}
	promotions, err := deps.Promotions.List(ctx)
	if err != nil {
		return fmt.Errorf("list promotions: %w", err)
	}
	if len(trainers) > 0 || len(promotions) > 0 {
		return nil
	}

	now := deps.Now().UTC()
	seedTrainers := []trainer.Trainer{
		{FirstName: "Alice", LastName: "Martin", Email: "alice.martin@academy.local", CreatedAt: now},
		{FirstName: "Karim", LastName: "Benali", Email: "karim.benali@academy.local", CreatedAt: now},
		{FirstName: "Sophie", LastName: "Leroy", Email: "sophie.leroy@academy.local", CreatedAt: now},
	}
	for _, t := range seedTrainers {
		if _, err := deps.Trainers.Create(ctx, t); err != nil {
			return fmt.Errorf("seed trainer %s: %w", t.Email, err)
		}
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	p := promotion.Promotion{
		Name:    fmt.Sprintf("Promotion %s", start.Format("2006-01")),
		StartAt: start,
		EndAt:   start.AddDate(0, 9, -1),
	}
	if _, err := deps.Promotions.Create(ctx, p); err != nil {
		return fmt.Errorf("seed promotion: %w", err)
	}

	slog.Info("seed_event", "event", "demo_seeded", "trainers", len(seedTrainers), "promotions", 1)
	return nil
}
