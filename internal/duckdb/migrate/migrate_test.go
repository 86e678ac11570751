package migrate

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
)

const latestVersion = 2

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunAppliesAllMigrations(t *testing.T) {
	db := openTestDB(t)
	if err := NewRunner(db).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, table := range []string{"snapshots", "memory_samples", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := NewRunner(db)

	if err := r.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := r.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	cur, pending, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != latestVersion || pending != 0 {
		t.Errorf("expected version=%d pending=0, got version=%d pending=%d", latestVersion, cur, pending)
	}
}

func TestStatusBeforeRun(t *testing.T) {
	db := openTestDB(t)
	cur, pending, err := NewRunner(db).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != 0 || pending != latestVersion {
		t.Errorf("before run: expected version=0 pending=%d, got version=%d pending=%d", latestVersion, cur, pending)
	}
}

func TestStepsOrdered(t *testing.T) {
	all, err := steps()
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	want := []string{"001_snapshots", "002_memory_samples"}
	if len(all) != len(want) {
		t.Fatalf("steps = %d, want %d", len(all), len(want))
	}
	for i, s := range all {
		if s.Version != i+1 || s.Name != want[i] {
			t.Errorf("step %d = v%d %s, want v%d %s", i, s.Version, s.Name, i+1, want[i])
		}
	}
}

func TestPendingIncludesGapsBelowNewest(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := NewRunner(db)
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// a box upgraded from a build that only recorded v2
	if _, err := db.Exec("DELETE FROM schema_migrations WHERE version = 1"); err != nil {
		t.Fatal(err)
	}
	pending, err := r.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 1 {
		t.Fatalf("pending = %+v, want v1", pending)
	}
	if err := r.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil || n != latestVersion {
		t.Errorf("ledger rows = %d (%v), want %d", n, err, latestVersion)
	}
}
