// Package migrate keeps the schema of the snapshot store current. Schema
// steps are embedded SQL files named <version>_<name>.sql; each version is
// applied once and recorded in schema_migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Step is one schema version of the snapshot store.
type Step struct {
	Version int
	Name    string
	sql     string
}

// Runner brings a snapshot database up to the embedded schema.
type Runner struct{ db *sql.DB }

func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// steps returns the embedded schema steps by version. Duplicate versions
// are an error so two files can never race for the same slot.
func steps() ([]Step, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("snapshot schema: listing steps: %w", err)
	}

	seen := make(map[int]string)
	var out []Step
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		ver, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("snapshot schema: bad version in %s: %w", name, err)
		}
		if other, dup := seen[ver]; dup {
			return nil, fmt.Errorf("snapshot schema: version %d used by %s and %s", ver, other, name)
		}
		seen[ver] = name

		data, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("snapshot schema: reading %s: %w", name, err)
		}
		out = append(out, Step{Version: ver, Name: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *Runner) ensureLedger(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       VARCHAR NOT NULL,
		applied_at TIMESTAMP DEFAULT current_timestamp
	)`)
	if err != nil {
		return fmt.Errorf("snapshot schema: creating ledger: %w", err)
	}
	return nil
}

// applied returns the recorded versions.
func (r *Runner) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("snapshot schema: reading ledger: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("snapshot schema: reading ledger: %w", err)
		}
		done[v] = true
	}
	return done, rows.Err()
}

// Pending lists the steps not yet recorded, lowest version first. A step
// added below the newest applied version is still pending.
func (r *Runner) Pending(ctx context.Context) ([]Step, error) {
	if err := r.ensureLedger(ctx); err != nil {
		return nil, err
	}
	all, err := steps()
	if err != nil {
		return nil, err
	}
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Step
	for _, s := range all {
		if !done[s.Version] {
			pending = append(pending, s)
		}
	}
	return pending, nil
}

// Run applies every pending step, each in its own transaction.
func (r *Runner) Run(ctx context.Context) error {
	pending, err := r.Pending(ctx)
	if err != nil {
		return err
	}
	for _, s := range pending {
		if err := r.apply(ctx, s); err != nil {
			return err
		}
		log.Printf("duckdb: snapshot schema v%d applied (%s)", s.Version, s.Name)
	}
	return nil
}

func (r *Runner) apply(ctx context.Context, s Step) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot schema v%d: begin: %w", s.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.sql); err != nil {
		return fmt.Errorf("snapshot schema v%d (%s): %w", s.Version, s.Name, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", s.Version, s.Name); err != nil {
		return fmt.Errorf("snapshot schema v%d: recording: %w", s.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot schema v%d: commit: %w", s.Version, err)
	}
	return nil
}

// Status returns the newest applied version and how many steps are pending.
func (r *Runner) Status(ctx context.Context) (current int, pending int, err error) {
	todo, err := r.Pending(ctx)
	if err != nil {
		return 0, 0, err
	}
	done, err := r.applied(ctx)
	if err != nil {
		return 0, 0, err
	}
	for v := range done {
		current = max(current, v)
	}
	return current, len(todo), nil
}
