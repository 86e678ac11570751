package duckdb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tinytelemetry/boxinfo/internal/model"
)

// InsertSnapshot stores one panel rendering and returns its id. An empty
// ID is assigned a new UUID; a zero CollectedAt is set to now.
func (s *Store) InsertSnapshot(snap model.Snapshot) (string, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CollectedAt.IsZero() {
		snap.CollectedAt = time.Now()
	}
	lines := snap.Lines
	if lines == nil {
		lines = []string{}
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("duckdb: encoding lines: %w", err)
	}

	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, panel_id, title, state, lines, collected_at) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.PanelID, snap.Title, snap.State, string(linesJSON), snap.CollectedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("duckdb: inserting snapshot for %s: %w", snap.PanelID, err)
	}
	return snap.ID, nil
}

// ListPanels returns one row per stored panel with its latest title and
// state, ordered by panel id.
func (s *Store) ListPanels() ([]model.PanelSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT panel_id,
		       arg_max(title, collected_at),
		       arg_max(state, collected_at),
		       COUNT(*),
		       MAX(collected_at)
		FROM snapshots
		GROUP BY panel_id
		ORDER BY panel_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PanelSummary
	for rows.Next() {
		var p model.PanelSummary
		if err := rows.Scan(&p.PanelID, &p.Title, &p.State, &p.Snapshots, &p.CollectedAt); err != nil {
			log.Printf("duckdb scan error (ListPanels): %v", err)
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LatestSnapshot returns the most recent snapshot of a panel, or
// ErrNotFound.
func (s *Store) LatestSnapshot(panelID string) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var snap model.Snapshot
	var linesJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, panel_id, title, state, lines, collected_at
		FROM snapshots
		WHERE panel_id = ?
		ORDER BY collected_at DESC
		LIMIT 1`, panelID,
	).Scan(&snap.ID, &snap.PanelID, &snap.Title, &snap.State, &linesJSON, &snap.CollectedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	if err := json.Unmarshal([]byte(linesJSON), &snap.Lines); err != nil {
		return model.Snapshot{}, fmt.Errorf("duckdb: decoding lines of %s: %w", snap.ID, err)
	}
	return snap, nil
}

// InsertMemorySample appends one point to the memory history.
func (s *Store) InsertMemorySample(m model.MemorySample) error {
	if m.At.IsZero() {
		m.At = time.Now()
	}

	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_samples (at, total_kb, free_kb, used_percent) VALUES (?, ?, ?, ?)`,
		m.At.UTC(), m.TotalKB, m.FreeKB, m.UsedPercent,
	)
	return err
}

// MemoryHistory returns up to limit of the newest samples, oldest first.
func (s *Store) MemoryHistory(limit int) ([]model.MemorySample, error) {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		SELECT at, total_kb, free_kb, used_percent FROM (
			SELECT * FROM memory_samples ORDER BY at DESC LIMIT ?
		) ORDER BY at ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MemorySample
	for rows.Next() {
		var m model.MemorySample
		if err := rows.Scan(&m.At, &m.TotalKB, &m.FreeKB, &m.UsedPercent); err != nil {
			log.Printf("duckdb scan error (MemoryHistory): %v", err)
			continue
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteBefore removes snapshots and memory samples older than cutoff and
// returns the number of rows deleted.
func (s *Store) DeleteBefore(cutoff time.Time) (int64, error) {
	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, q := range []string{
		`DELETE FROM snapshots WHERE collected_at < ?`,
		`DELETE FROM memory_samples WHERE at < ?`,
	} {
		res, err := s.db.ExecContext(ctx, q, cutoff.UTC())
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// TableRowCounts returns row counts for the stored tables.
func (s *Store) TableRowCounts() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	counts := make(map[string]int64, 2)
	for _, table := range []string{"snapshots", "memory_samples"} {
		var count int64
		// table names are constants
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, err
		}
		counts[table] = count
	}
	return counts, nil
}
