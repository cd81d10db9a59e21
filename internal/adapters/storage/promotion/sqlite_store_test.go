package promotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/promotion"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)

	id, err := store.Create(ctx, domain.Promotion{Name: "CDA 2024", StartAt: start, EndAt: end})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "CDA 2024" || !got.StartAt.Equal(start) || !got.EndAt.Equal(end) {
		t.Errorf("GetByID = %+v", got)
	}
}

func TestSQLiteStore_OptionalDates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, domain.Promotion{Name: "Open cohort"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ := store.GetByID(ctx, id)
	if !got.StartAt.IsZero() || !got.EndAt.IsZero() {
		t.Errorf("dates = %v..%v, want zero", got.StartAt, got.EndAt)
	}
}

func TestSQLiteStore_GetByIDNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetByID(context.Background(), 12); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ListMostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, p := range []domain.Promotion{
		{Name: "2023", StartAt: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "2024", StartAt: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
	} {
		if _, err := store.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "2024" || list[1].Name != "2023" {
		t.Errorf("List = %+v", list)
	}
}
