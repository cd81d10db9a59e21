package storage

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"academy/internal/adapters/http/perf"
)

func newTimedStore(t *testing.T, collector *perf.Collector) (*TimedDB, context.Context) {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTimedDB(db, collector, 0), context.Background()
}

func TestTimedDB_ObservesEachOperation(t *testing.T) {
	collector := perf.NewCollector()
	tdb, ctx := newTimedStore(t, collector)

	if _, err := tdb.ExecContext(ctx, `INSERT INTO promotion (name) VALUES (?)`, "CDA 2024"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var name string
	if err := tdb.QueryRowContext(ctx, `SELECT name FROM promotion WHERE id = 1`).Scan(&name); err != nil || name != "CDA 2024" {
		t.Fatalf("QueryRowContext = %q, %v", name, err)
	}
	rows, err := tdb.QueryContext(ctx, `SELECT id FROM promotion`)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	tx.Rollback()

	n, err := testutil.GatherAndCount(collector.Registry(), "academy_db_query_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 4 {
		t.Errorf("query series = %d, want 4 (exec, query_row, query, begin)", n)
	}
}

func TestTimedDB_FailedQueryStillObserved(t *testing.T) {
	collector := perf.NewCollector()
	tdb, ctx := newTimedStore(t, collector)

	if _, err := tdb.ExecContext(ctx, `INSERT INTO no_such_table (x) VALUES (1)`); err == nil {
		t.Fatal("insert into missing table succeeded")
	}
	if n, _ := testutil.GatherAndCount(collector.Registry(), "academy_db_query_duration_seconds"); n != 1 {
		t.Errorf("series = %d, want 1", n)
	}
}

func TestTimedDB_NilCollector(t *testing.T) {
	tdb, ctx := newTimedStore(t, nil)
	if _, err := tdb.ExecContext(ctx, `INSERT INTO promotion (name) VALUES ('x')`); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	if err := tdb.PingContext(ctx); err != nil {
		t.Errorf("PingContext: %v", err)
	}
}

func TestCompactQuery(t *testing.T) {
	got := compactQuery("SELECT id,\n\t\tname\n\tFROM promotion  ")
	if got != "SELECT id, name FROM promotion" {
		t.Errorf("compactQuery = %q", got)
	}
}
