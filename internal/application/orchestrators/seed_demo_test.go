package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"academy/internal/domain/promotion"
	"academy/internal/domain/trainer"
)

type seedTrainers struct {
	items   []trainer.Trainer
	listErr error
}

func (s *seedTrainers) Create(_ context.Context, t trainer.Trainer) (int64, error) {
	t.ID = int64(len(s.items) + 1)
	s.items = append(s.items, t)
	return t.ID, nil
}

func (s *seedTrainers) List(context.Context) ([]trainer.Trainer, error) {
	return s.items, s.listErr
}

type seedPromotions struct {
	items []promotion.Promotion
}

func (s *seedPromotions) Create(_ context.Context, p promotion.Promotion) (int64, error) {
	p.ID = int64(len(s.items) + 1)
	s.items = append(s.items, p)
	return p.ID, nil
}

func (s *seedPromotions) List(context.Context) ([]promotion.Promotion, error) {
	return s.items, nil
}

func TestExecuteSeedDemo(t *testing.T) {
	trainers := &seedTrainers{}
	promotions := &seedPromotions{}
	deps := SeedDemoDeps{
		Trainers:   trainers,
		Promotions: promotions,
		Now:        func() time.Time { return t0 },
	}

	if err := ExecuteSeedDemo(context.Background(), deps); err != nil {
		t.Fatalf("ExecuteSeedDemo: %v", err)
	}
	if len(trainers.items) != 3 {
		t.Errorf("trainers = %d, want 3", len(trainers.items))
	}
	for _, tr := range trainers.items {
		if err := tr.Validate(); err != nil {
			t.Errorf("seeded trainer %s invalid: %v", tr.Email, err)
		}
	}
	if len(promotions.items) != 1 {
		t.Fatalf("promotions = %d, want 1", len(promotions.items))
	}
	p := promotions.items[0]
	if err := p.Validate(); err != nil {
		t.Errorf("seeded promotion invalid: %v", err)
	}
	if p.Name != "Promotion 2024-03" {
		t.Errorf("promotion name = %q", p.Name)
	}

	// A second run finds data and leaves it alone.
	if err := ExecuteSeedDemo(context.Background(), deps); err != nil {
		t.Fatalf("second ExecuteSeedDemo: %v", err)
	}
	if len(trainers.items) != 3 || len(promotions.items) != 1 {
		t.Errorf("second run seeded again: %d trainers, %d promotions", len(trainers.items), len(promotions.items))
	}
}

func TestExecuteSeedDemo_ListError(t *testing.T) {
	deps := SeedDemoDeps{
		Trainers:   &seedTrainers{listErr: errors.New("boom")},
		Promotions: &seedPromotions{},
		Now:        time.Now,
	}
	if err := ExecuteSeedDemo(context.Background(), deps); err == nil {
		t.Error("expected error when listing trainers fails")
	}
}
