package sysfs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MemEntry is one /proc/meminfo row, kept as printed by the kernel.
type MemEntry struct {
	Name  string // including the trailing colon, e.g. "MemTotal:"
	Size  string
	Units string
}

// Key returns the name without its trailing colon.
func (e MemEntry) Key() string { return strings.TrimSuffix(e.Name, ":") }

// KB returns the numeric size, or 0 when it does not parse.
func (e MemEntry) KB() int64 {
	n, err := strconv.ParseInt(e.Size, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// MemInfo is a parsed /proc/meminfo.
type MemInfo struct {
	Entries []MemEntry
}

// ParseMemInfo parses meminfo text. Malformed rows are skipped.
func ParseMemInfo(r io.Reader) MemInfo {
	var mi MemInfo
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch len(fields) {
		case 2:
			mi.Entries = append(mi.Entries, MemEntry{Name: fields[0], Size: fields[1]})
		case 3:
			mi.Entries = append(mi.Entries, MemEntry{Name: fields[0], Size: fields[1], Units: fields[2]})
		}
	}
	return mi
}

// ReadMemInfo reads and parses /proc/meminfo under the root.
func (f FS) ReadMemInfo() (MemInfo, error) {
	data, err := f.ReadFile("/proc/meminfo")
	if err != nil {
		return MemInfo{}, err
	}
	return ParseMemInfo(strings.NewReader(string(data))), nil
}

// Lookup returns the entry named key (without colon).
func (m MemInfo) Lookup(key string) (MemEntry, bool) {
	for _, e := range m.Entries {
		if e.Key() == key {
			return e, true
		}
	}
	return MemEntry{}, false
}

// MemUsage is the summary shown under the memory table.
type MemUsage struct {
	TotalKB     int64
	FreeKB      int64
	FreePercent float64
	UsedPercent float64
	// Progress is the 0-100 value for a progress indicator.
	Progress int
}

// FreeText renders the free percentage, e.g. "25.0 %".
func (u MemUsage) FreeText() string { return fmt.Sprintf("%.1f %%", u.FreePercent) }

// UsedText renders the used percentage, e.g. "75.0 %".
func (u MemUsage) UsedText() string { return fmt.Sprintf("%.1f %%", u.UsedPercent) }

// Usage computes used/free memory. Reclaimable Buffers and Cached count
// as free. A missing MemTotal is treated as 1 kB to avoid dividing by zero.
func (m MemInfo) Usage() MemUsage {
	total := int64(1)
	var free int64
	for _, e := range m.Entries {
		switch {
		case strings.HasPrefix(e.Name, "MemTotal"):
			if kb := e.KB(); kb > 0 {
				total = kb
			}
		case strings.HasPrefix(e.Name, "MemFree"),
			strings.HasPrefix(e.Name, "Buffers"),
			strings.HasPrefix(e.Name, "Cached"):
			free += e.KB()
		}
	}
	used := 100.0 * float64(total-free) / float64(total)
	return MemUsage{
		TotalKB:     total,
		FreeKB:      free,
		FreePercent: 100.0 * float64(free) / float64(total),
		UsedPercent: used,
		Progress:    int(used + 0.25),
	}
}
