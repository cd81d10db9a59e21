package trainee

import (
	"context"
	"errors"
	"testing"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/trainee"
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

func seed(t *testing.T, store *SQLiteStore) {
	t.Helper()
	for _, tr := range []domain.Trainee{
		{FirstName: "Claire", LastName: "Bernard", Email: "claire@example.com"},
		{FirstName: "Marc", LastName: "Dubois", Email: "marc@example.com"},
		{FirstName: "Anne", LastName: "Marchand", Email: "anne@example.com"},
		{FirstName: "Paul", LastName: "Lefevre", Email: "paul@example.com"},
	} {
		if _, err := store.Create(context.Background(), tr); err != nil {
			t.Fatalf("Create %s: %v", tr.Email, err)
		}
	}
}

func TestSQLiteStore_CreateGetUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, domain.Trainee{FirstName: "Claire", LastName: "Bernard", Email: "claire@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PromotionID != 0 {
		t.Errorf("PromotionID = %d, want 0", got.PromotionID)
	}

	got.Phone = "0601020304"
	got.LastName = "Bernard-Roy"
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := store.GetByID(ctx, id)
	if updated.Phone != "0601020304" || updated.LastName != "Bernard-Roy" {
		t.Errorf("after update = %+v", updated)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetByID(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
	err := store.Update(ctx, domain.Trainee{ID: 7, FirstName: "A", LastName: "B", Email: "a@b.c"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ListAndCount(t *testing.T) {
	store := newTestStore(t)
	seed(t, store)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ListFilter
		want   []string // last names in order
	}{
		{"all by last name", ListFilter{}, []string{"Bernard", "Dubois", "Lefevre", "Marchand"}},
		{"descending", ListFilter{Desc: true}, []string{"Marchand", "Lefevre", "Dubois", "Bernard"}},
		{"sort by first name", ListFilter{Sort: "first_name"}, []string{"Marchand", "Bernard", "Dubois", "Lefevre"}},
		{"unknown sort falls back", ListFilter{Sort: "phone; DROP TABLE trainee"}, []string{"Bernard", "Dubois", "Lefevre", "Marchand"}},
		{"search matches name case-insensitively", ListFilter{Search: "MARC"}, []string{"Dubois", "Marchand"}},
		{"search matches email", ListFilter{Search: "paul@"}, []string{"Lefevre"}},
		{"paged", ListFilter{Limit: 2, Offset: 2}, []string{"Lefevre", "Marchand"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(list), len(tt.want))
			}
			for i, w := range tt.want {
				if list[i].LastName != w {
					t.Errorf("list[%d] = %q, want %q", i, list[i].LastName, w)
				}
			}
		})
	}

	n, err := store.Count(ctx, "marc")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count(marc) = %d, want 2", n)
	}
	if n, _ := store.Count(ctx, ""); n != 4 {
		t.Errorf("Count() = %d, want 4", n)
	}
}
