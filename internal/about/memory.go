package about

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

const dropCachesPath = "/proc/sys/vm/drop_caches"

// SystemMemory is the "Memory Information" pane: RAM and swap totals from
// /proc/meminfo and the flash usage of the root filesystem.
type SystemMemory struct {
	env *Env
}

func NewSystemMemory(env *Env) *SystemMemory { return &SystemMemory{env: env} }

func (p *SystemMemory) ID() string    { return "sysmem" }
func (p *SystemMemory) Title() string { return "Memory Information" }

var systemMemoryRows = []struct{ key, label string }{
	{"MemTotal", "Total memory:"},
	{"MemFree", "Free memory:"},
	{"Buffers", "Buffers:"},
	{"Cached", "Cached:"},
	{"SwapTotal", "Total swap:"},
	{"SwapFree", "Free swap:"},
}

func (p *SystemMemory) Open(b *panel.Builder) {
	b.Line(b.T("RAM"))
	b.Blank()
	if info, err := p.env.FS.ReadMemInfo(); err == nil {
		for _, row := range systemMemoryRows {
			if e, ok := info.Lookup(row.key); ok {
				b.Line(b.T(row.label) + "\t" + e.Size)
			}
		}
		b.Blank()
	}

	flash, total, free := b.T("Flash"), b.T("Total:"), b.T("Free:")
	b.Exec("df -mh / | grep -v '^Filesystem'", func(out string) []string {
		f := strings.Fields(out)
		if len(f) < 4 {
			return nil
		}
		return []string{flash, "", total + "\t" + f[1], free + "\t" + f[3], ""}
	})
}

// Memory is the "Memory Info" pane: every meminfo row in two columns, the
// free/used percentages and a usage gauge. It can also drop the page cache.
type Memory struct {
	env *Env

	mu    sync.Mutex
	usage sysfs.MemUsage
}

func NewMemory(env *Env) *Memory { return &Memory{env: env} }

func (p *Memory) ID() string    { return "memory" }
func (p *Memory) Title() string { return "Memory Info" }

func (p *Memory) rows() int {
	if p.env.MemoryRows > 0 {
		return p.env.MemoryRows
	}
	return model.DefaultMemoryRows
}

func (p *Memory) Open(b *panel.Builder) {
	info, err := p.env.FS.ReadMemInfo()
	var usage sysfs.MemUsage
	if err == nil {
		usage = info.Usage()
	} else {
		log.Printf("about: memory info: %v", err)
	}
	p.mu.Lock()
	p.usage = usage
	p.mu.Unlock()

	if err == nil {
		b.Lines(MemoryColumns(info, p.rows())...)
		b.Blank()
		b.Field("Free: ", usage.FreeText())
		b.Field("Used: ", usage.UsedText())
		b.Blank()
	}
	b.Line(b.T("This info is for developers only."))
	b.Line(b.T("For normal users it is not relevant."))
	b.Line(b.T("Please don't panic if you see values displayed looking suspicious!"))
}

// Usage returns the figures of the last Open.
func (p *Memory) Usage() sysfs.MemUsage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.usage
}

// ClearMemory flushes dirty pages and drops the page cache. The caller
// refreshes the panel afterwards.
func (p *Memory) ClearMemory(ctx context.Context) error {
	if p.env.Runner != nil {
		if res := p.env.Runner.Run(ctx, "sync"); res.Failed() {
			return fmt.Errorf("about: sync failed (exit %d): %v", res.ExitStatus, res.Err)
		}
	}
	if err := p.env.FS.WriteString(dropCachesPath, "3"); err != nil {
		return fmt.Errorf("about: dropping caches: %w", err)
	}
	return nil
}

// MemoryColumns lays the meminfo rows out side by side: the first rows
// entries on the left, the rest on the right.
func MemoryColumns(info sysfs.MemInfo, rows int) []string {
	left, right := info.Entries, []sysfs.MemEntry(nil)
	if len(left) > rows {
		left, right = info.Entries[:rows], info.Entries[rows:]
	}
	const cellWidth = 32
	cell := func(e sysfs.MemEntry) string {
		return fmt.Sprintf("%-18s %10s %-2s", e.Name, e.Size, e.Units)
	}
	out := make([]string, 0, len(left))
	for i, e := range left {
		line := cell(e)
		if i < len(right) {
			line += "    " + cell(right[i])
		}
		out = append(out, strings.TrimRight(line, " "))
	}
	for i := len(left); i < len(right); i++ {
		out = append(out, strings.Repeat(" ", cellWidth)+"    "+strings.TrimRight(cell(right[i]), " "))
	}
	return out
}
