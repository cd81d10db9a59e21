package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"academy/internal/adapters/http/perf"
)

// SQLDB is what every store needs from the database. Tests pass a plain
// *sql.DB, the server a *TimedDB.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// TimestampLayout stores instants as fixed-width UTC text so that string
// order matches chronological order in ORDER BY.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultSlowQuery is the threshold above which a query is logged at WARN.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow queries and feed the metrics collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection; collector may be nil
// POST: Returns a TimedDB that logs queries slower than threshold
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// RawDB returns the underlying pool.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Operation labels for the query histogram.
const (
	opExec     = "exec"
	opQuery    = "query"
	opQueryRow = "query_row"
	opBegin    = "begin"
)

func (t *TimedDB) observe(op, query string, start time.Time, err error) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	switch {
	case err != nil:
		slog.Debug("query_failed", "op", op, "query", compactQuery(query), "duration_ms", durationMs, "error", err)
	case elapsed >= t.threshold:
		slog.Warn("slow_query", "op", op, "query", compactQuery(query), "duration_ms", durationMs)
	}
	t.collector.ObserveQuery(op, elapsed)
}

// compactQuery folds the indentation of multi-line statements onto one line.
func compactQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// ExecContext times sql.DB.ExecContext.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(opExec, query, start, err)
	return result, err
}

// QueryContext times sql.DB.QueryContext.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(opQuery, query, start, err)
	return rows, err
}

// QueryRowContext times sql.DB.QueryRowContext. Scan errors surface later
// and are not seen here.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(opQueryRow, query, start, row.Err())
	return row
}

// BeginTx times opening the transaction only.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe(opBegin, "BEGIN", start, err)
	return tx, err
}

// PingContext verifies the database connection. Used by /healthz.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}
