package trainer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/trainer"
)

const dateFormat = "2006-01-02"

// ErrNotFound is returned when no trainer has the requested ID.
var ErrNotFound = domain.ErrNotFound

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new trainer store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a trainer and returns its generated ID.
// PRE: t has been validated
// POST: Trainer is persisted with a fresh ID
func (s *SQLiteStore) Create(ctx context.Context, t domain.Trainer) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO trainer (first_name, last_name, email, created_at) VALUES (?, ?, ?, ?)",
		t.FirstName, t.LastName, t.Email, t.CreatedAt.Format(dateFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("insert trainer: %w", err)
	}
	return res.LastInsertId()
}

// GetByID retrieves a Trainer by its ID.
// PRE: id > 0
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Trainer, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, first_name, last_name, email, created_at FROM trainer WHERE id = ?", id)
	t, err := scanTrainer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trainer{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return t, err
}

// List retrieves all trainers ordered by last then first name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Trainer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, first_name, last_name, email, created_at FROM trainer ORDER BY last_name, first_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Trainer
	for rows.Next() {
		t, err := scanTrainer(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrainer(row scanner) (domain.Trainer, error) {
	var t domain.Trainer
	var created string
	if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Email, &created); err != nil {
		return domain.Trainer{}, err
	}
	t.CreatedAt, _ = time.Parse(dateFormat, created)
	return t, nil
}
