// Package sysfs performs best-effort reads of the small OS and metadata
// files the information panels are built from. Every path is resolved
// under a root so tests can point the reader at a synthetic tree.
package sysfs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FS reads files relative to a root directory.
type FS struct {
	root string
}

// New returns an FS rooted at root. An empty root means "/".
func New(root string) FS {
	if root == "" {
		root = "/"
	}
	return FS{root: root}
}

// Host returns an FS rooted at the real filesystem root.
func Host() FS { return New("/") }

// Root returns the directory all paths are resolved under.
func (f FS) Root() string { return f.root }

// Path maps an absolute box path (e.g. /proc/meminfo) into the root.
func (f FS) Path(p string) string {
	return filepath.Join(f.root, filepath.FromSlash(p))
}

// Rel maps a path returned by Glob back into box coordinates.
func (f FS) Rel(full string) string {
	rel, err := filepath.Rel(f.root, full)
	if err != nil {
		return full
	}
	return "/" + filepath.ToSlash(rel)
}

// Exists reports whether the path exists.
func (f FS) Exists(p string) bool {
	_, err := os.Stat(f.Path(p))
	return err == nil
}

// IsFile reports whether the path exists and is a regular file.
func (f FS) IsFile(p string) bool {
	info, err := os.Stat(f.Path(p))
	return err == nil && info.Mode().IsRegular()
}

// ReadFile returns the raw file contents.
func (f FS) ReadFile(p string) ([]byte, error) {
	return os.ReadFile(f.Path(p))
}

// ReadString returns the trimmed file contents and whether the read worked.
func (f FS) ReadString(p string) (string, bool) {
	data, err := os.ReadFile(f.Path(p))
	if err != nil {
		return "", false
	}
	// device-tree strings are NUL terminated
	return strings.TrimSpace(strings.TrimRight(string(data), "\x00")), true
}

// ReadOr returns the trimmed file contents or fallback when unreadable.
func (f FS) ReadOr(p, fallback string) string {
	if s, ok := f.ReadString(p); ok {
		return s
	}
	return fallback
}

// WriteString replaces the file contents.
func (f FS) WriteString(p, s string) error {
	return os.WriteFile(f.Path(p), []byte(s), 0644)
}

// Remove deletes the file.
func (f FS) Remove(p string) error {
	return os.Remove(f.Path(p))
}

// List returns the sorted entry names of a directory, or nil.
func (f FS) List(dir string) []string {
	entries, err := os.ReadDir(f.Path(dir))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// GlobByMTime returns the regular files matching pattern, oldest first,
// as box paths.
func (f FS) GlobByMTime(pattern string) []string {
	matches, err := filepath.Glob(f.Path(pattern))
	if err != nil {
		return nil
	}
	type entry struct {
		path string
		mod  time.Time
	}
	files := make([]entry, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, entry{path: f.Rel(m), mod: info.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
	out := make([]string, len(files))
	for i, e := range files {
		out[i] = e.path
	}
	return out
}
