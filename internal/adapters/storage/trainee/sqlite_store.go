package trainee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/trainee"
)

const dateFormat = "2006-01-02"

const selectColumns = `SELECT id, first_name, last_name, email, phone, COALESCE(promotion_id, 0), created_at FROM trainee`

// ErrNotFound is returned when no trainee has the requested ID.
var ErrNotFound = domain.ErrNotFound

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new trainee store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a trainee and returns its generated ID.
// PRE: t has been validated
// POST: Trainee is persisted with a fresh ID
func (s *SQLiteStore) Create(ctx context.Context, t domain.Trainee) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO trainee (first_name, last_name, email, phone, promotion_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.FirstName, t.LastName, t.Email, t.Phone, nullableID(t.PromotionID), t.CreatedAt.Format(dateFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("insert trainee: %w", err)
	}
	return res.LastInsertId()
}

// GetByID retrieves a Trainee by its ID.
// PRE: id > 0
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Trainee, error) {
	t, err := scanTrainee(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trainee{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return t, err
}

// Update overwrites the editable fields of an existing trainee.
// PRE: t.ID > 0 and t has been validated
// POST: Row is updated or ErrNotFound is returned
func (s *SQLiteStore) Update(ctx context.Context, t domain.Trainee) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE trainee SET first_name = ?, last_name = ?, email = ?, phone = ?, promotion_id = ? WHERE id = ?`,
		t.FirstName, t.LastName, t.Email, t.Phone, nullableID(t.PromotionID), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update trainee %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, t.ID)
	}
	return nil
}

// List returns trainees matching filter.Search, sorted and paged.
// PRE: filter.Sort is empty or one of SortColumns
// POST: Returns at most filter.Limit rows when Limit > 0
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Trainee, error) {
	where, args := searchClause(filter.Search)

	sortCol := "last_name"
	if slices.Contains(SortColumns, filter.Sort) {
		sortCol = filter.Sort
	}
	dir := "ASC"
	if filter.Desc {
		dir = "DESC"
	}
	query := fmt.Sprintf("%s%s ORDER BY %s %s, id ASC", selectColumns, where, sortCol, dir)
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Trainee
	for rows.Next() {
		t, err := scanTrainee(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// Count returns how many trainees match search.
func (s *SQLiteStore) Count(ctx context.Context, search string) (int, error) {
	where, args := searchClause(search)
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trainee`+where, args...).Scan(&n)
	return n, err
}

func searchClause(search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}
	like := "%" + strings.ToLower(search) + "%"
	return ` WHERE LOWER(first_name || ' ' || last_name || ' ' || email) LIKE ?`, []any{like}
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrainee(row scanner) (domain.Trainee, error) {
	var t domain.Trainee
	var created string
	if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Email, &t.Phone, &t.PromotionID, &created); err != nil {
		return domain.Trainee{}, err
	}
	t.CreatedAt, _ = time.Parse(dateFormat, created)
	return t, nil
}
