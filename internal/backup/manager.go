// Package backup keeps rotating local copies of the snapshot database.
package backup

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultInterval = 24 * time.Hour
	defaultKeepLast = 7
	filePrefix      = "boxinfo-"
	fileSuffix      = ".duckdb"
)

// Config controls periodic database backups.
type Config struct {
	Enabled  bool
	Interval time.Duration
	LocalDir string
	KeepLast int
}

// Source is a database that can copy itself to a file.
type Source interface {
	DBPath() string
	BackupTo(dstPath string) error
}

// Manager runs periodic local backups and prunes old copies.
type Manager struct {
	store Source
	cfg   Config
	now   func() time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewManager starts the backup loop. It returns nil when backups are disabled.
func NewManager(store Source, cfg Config) (*Manager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if store == nil {
		return nil, fmt.Errorf("backup: nil source")
	}
	if strings.TrimSpace(store.DBPath()) == "" {
		return nil, fmt.Errorf("backup: db-path is empty (in-memory store)")
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, fmt.Errorf("backup: backup-dir is required when backup is enabled")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if err := os.MkdirAll(cfg.LocalDir, 0755); err != nil {
		return nil, fmt.Errorf("backup: create backup-dir: %w", err)
	}

	m := &Manager{store: store, cfg: cfg, now: time.Now, done: make(chan struct{})}

	if err := m.RunOnce(); err != nil {
		log.Printf("backup: startup backup failed: %v", err)
	}

	m.wg.Add(1)
	go m.loop()
	return m, nil
}

func (m *Manager) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.RunOnce(); err != nil {
				log.Printf("backup: periodic backup failed: %v", err)
			}
		case <-m.done:
			return
		}
	}
}

// RunOnce writes one backup and prunes copies beyond KeepLast.
func (m *Manager) RunOnce() error {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	name := filePrefix + now().UTC().Format("20060102-150405") + fileSuffix
	path := filepath.Join(m.cfg.LocalDir, name)

	if err := m.store.BackupTo(path); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	log.Printf("backup: wrote %s", path)

	if err := prune(m.cfg.LocalDir, m.cfg.KeepLast); err != nil {
		return fmt.Errorf("backup: prune: %w", err)
	}
	return nil
}

// Stop terminates the backup loop.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
	})
}

func prune(dir string, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return err
	}
	if len(matches) <= keepLast {
		return nil
	}

	// the timestamp in the name sorts chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	for _, old := range matches[keepLast:] {
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
