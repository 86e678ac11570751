package about

import (
	"strings"

	"github.com/tinytelemetry/boxinfo/internal/panel"
)

// dhryResultPath caches the benchmark output; dhry takes several seconds.
const dhryResultPath = "/tmp/dhry.txt"

// Benchmark is the "Benchmark Information" pane running the Dhrystone
// benchmark shipped with the image.
type Benchmark struct {
	env *Env
}

func NewBenchmark(env *Env) *Benchmark { return &Benchmark{env: env} }

func (p *Benchmark) ID() string    { return "benchmark" }
func (p *Benchmark) Title() string { return "Benchmark Information" }

func (p *Benchmark) Open(b *panel.Builder) {
	b.Line(b.T("Benchmark information"))
	b.Blank()

	label := b.T("CPU benchmark: ")
	if cached, ok := p.env.FS.ReadString(dhryResultPath); ok {
		b.Line(label + FormatBenchmark(cached))
		return
	}
	fs := p.env.FS
	b.Exec("dhry", func(out string) []string {
		_ = fs.WriteString(dhryResultPath, out)
		return []string{label + FormatBenchmark(out)}
	})
}

// FormatBenchmark renders "<n> DMIPS per core (<status>)" from dhry output.
func FormatBenchmark(out string) string {
	var dmips, status string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "Open Vision DMIPS"):
			dmips = strings.TrimLeftFunc(line, func(r rune) bool { return r < '0' || r > '9' })
		case strings.Contains(line, "Open Vision CPU status"):
			if _, v, ok := strings.Cut(line, ":"); ok {
				status = v
			}
		}
	}
	return strings.TrimSpace(dmips) + " DMIPS per core (" + strings.TrimSpace(status) + ")"
}
