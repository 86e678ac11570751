package logparse

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jaeyo/go-drain3/pkg/drain3"
)

// Pattern is one mined log template with how often it matched.
type Pattern struct {
	Template   string
	Count      int
	Percentage float64
}

// PatternMiner groups log lines into templates with drain3. Variable
// tokens such as numbers, addresses and pids collapse into "<*>".
type PatternMiner struct {
	mu    sync.Mutex
	drain *drain3.Drain
	total int
}

func NewPatternMiner() (*PatternMiner, error) {
	d, err := newDrain()
	if err != nil {
		return nil, err
	}
	return &PatternMiner{drain: d}, nil
}

func newDrain() (*drain3.Drain, error) {
	d, err := drain3.NewDrain(
		drain3.WithDepth(4),
		drain3.WithSimTh(0.4),
		drain3.WithMaxChildren(100),
		drain3.WithMaxCluster(1000),
	)
	if err != nil {
		return nil, fmt.Errorf("logparse: drain3: %w", err)
	}
	return d, nil
}

// Add feeds one line. Blank lines and the kernel priority prefix are skipped.
func (m *PatternMiner) Add(line string) {
	line = strings.TrimSpace(kernelPrefix.ReplaceAllString(line, ""))
	if line == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, _, err := m.drain.AddLogMessage(line); err != nil {
		return
	}
	m.total++
}

// AddLines feeds every line in order.
func (m *PatternMiner) AddLines(lines []string) {
	for _, l := range lines {
		m.Add(l)
	}
}

// Top returns up to n patterns, most frequent first. n <= 0 returns all.
func (m *PatternMiner) Top(n int) []Pattern {
	m.mu.Lock()
	defer m.mu.Unlock()

	clusters := m.drain.GetClusters()
	out := make([]Pattern, 0, len(clusters))
	for _, c := range clusters {
		p := Pattern{Template: c.GetTemplate(), Count: int(c.Size)}
		if m.total > 0 {
			p.Percentage = float64(p.Count) * 100 / float64(m.total)
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Template < out[j].Template
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Stats returns the number of patterns and of lines fed.
func (m *PatternMiner) Stats() (patterns, lines int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drain.GetClusters()), m.total
}

// Reset forgets every pattern.
func (m *PatternMiner) Reset() error {
	d, err := newDrain()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.drain = d
	m.total = 0
	m.mu.Unlock()
	return nil
}
