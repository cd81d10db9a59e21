package audit

import (
	"context"
	"fmt"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/audit"
)

const selectColumns = `SELECT id, timestamp, promotion_id, session_id, action, description, metadata FROM audit_event`

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event has been validated
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, promotion_id, session_id, action, description, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC().Format(storage.TimestampLayout), e.PromotionID, e.SessionID, string(e.Action), e.Description, e.Metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByPromotion returns a promotion's events, newest first.
// PRE: limit > 0
// POST: Returns up to limit events
func (s *SQLiteStore) ListByPromotion(ctx context.Context, promotionID int64, limit int) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE promotion_id = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, promotionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e         domain.Event
			timestamp string
			action    string
		)
		if err := rows.Scan(&e.ID, &timestamp, &e.PromotionID, &e.SessionID, &action, &e.Description, &e.Metadata); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = domain.Action(action)
		e.Timestamp, _ = time.Parse(storage.TimestampLayout, timestamp)
		events = append(events, e)
	}
	return events, rows.Err()
}
