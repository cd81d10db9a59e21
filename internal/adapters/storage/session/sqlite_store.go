package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/session"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("session not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateSession inserts s and returns the ID SQLite assigned.
// PRE: s has been validated and carries a promotion and trainer ID
// POST: Session is persisted under a fresh ID
func (s *SQLiteStore) CreateSession(ctx context.Context, sess domain.Session) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session (promotion_id, description, start_at, end_at, trainer_id) VALUES (?, ?, ?, ?, ?)`,
		sess.PromotionID, sess.Description,
		sess.StartAt.Format(domain.DateFormat), sess.EndAt.Format(domain.DateFormat),
		sess.Trainer.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	return res.LastInsertId()
}

// DeleteSession removes the session with the given ID.
// POST: Returns ErrNotFound when no row matched
func (s *SQLiteStore) DeleteSession(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// ListByPromotion returns a promotion's sessions with their trainers,
// ordered by ID so the registry is rebuilt in insertion order.
func (s *SQLiteStore) ListByPromotion(ctx context.Context, promotionID int64) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.promotion_id, s.description, s.start_at, s.end_at,
		        t.id, t.first_name, t.last_name, t.email, t.created_at
		 FROM session s JOIN trainer t ON t.id = s.trainer_id
		 WHERE s.promotion_id = ?
		 ORDER BY s.id ASC`, promotionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		var sess domain.Session
		var startAt, endAt, trainerCreated string
		if err := rows.Scan(&sess.ID, &sess.PromotionID, &sess.Description, &startAt, &endAt,
			&sess.Trainer.ID, &sess.Trainer.FirstName, &sess.Trainer.LastName, &sess.Trainer.Email,
			&trainerCreated); err != nil {
			return nil, err
		}
		if sess.StartAt, err = time.Parse(domain.DateFormat, startAt); err != nil {
			return nil, fmt.Errorf("session %d start_at: %w", sess.ID, err)
		}
		if sess.EndAt, err = time.Parse(domain.DateFormat, endAt); err != nil {
			return nil, fmt.Errorf("session %d end_at: %w", sess.ID, err)
		}
		if sess.Trainer.CreatedAt, err = time.Parse(domain.DateFormat, trainerCreated); err != nil {
			return nil, fmt.Errorf("trainer %d created_at: %w", sess.Trainer.ID, err)
		}
		results = append(results, sess)
	}
	return results, rows.Err()
}
