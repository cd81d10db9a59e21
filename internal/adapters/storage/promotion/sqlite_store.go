package promotion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/promotion"
)

const dateFormat = "2006-01-02"

// ErrNotFound is returned when no promotion has the requested ID.
var ErrNotFound = domain.ErrNotFound

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new promotion store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a promotion and returns its generated ID.
// PRE: p has been validated
// POST: Promotion is persisted with a fresh ID
func (s *SQLiteStore) Create(ctx context.Context, p domain.Promotion) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO promotion (name, start_at, end_at) VALUES (?, ?, ?)`,
		p.Name, formatDate(p.StartAt), formatDate(p.EndAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert promotion: %w", err)
	}
	return res.LastInsertId()
}

// GetByID retrieves a Promotion by its ID.
// PRE: id > 0
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Promotion, error) {
	p, err := scanPromotion(s.db.QueryRowContext(ctx, `SELECT id, name, start_at, end_at FROM promotion WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Promotion{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return p, err
}

// List returns every promotion, most recent start first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Promotion, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, start_at, end_at FROM promotion ORDER BY start_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// formatDate stores a zero date as an empty string.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPromotion(row scanner) (domain.Promotion, error) {
	var p domain.Promotion
	var startAt, endAt string
	if err := row.Scan(&p.ID, &p.Name, &startAt, &endAt); err != nil {
		return domain.Promotion{}, err
	}
	if startAt != "" {
		p.StartAt, _ = time.Parse(dateFormat, startAt)
	}
	if endAt != "" {
		p.EndAt, _ = time.Parse(dateFormat, endAt)
	}
	return p, nil
}
