package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

// execPanel runs one command per open.
type execPanel struct {
	id, cmd string
	mu      sync.Mutex
	opens   int
}

func (p *execPanel) ID() string    { return p.id }
func (p *execPanel) Title() string { return "Panel " + p.id }
func (p *execPanel) Open(b *panel.Builder) {
	p.mu.Lock()
	p.opens++
	p.mu.Unlock()
	b.Line("header")
	if p.cmd != "" {
		b.Exec(p.cmd, nil)
	}
}

func (p *execPanel) openCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens
}

type cyclingPanel struct {
	execPanel
	current, views int
}

func (p *cyclingPanel) Next()               { p.current = (p.current + 1) % p.views }
func (p *cyclingPanel) Prev()               { p.current = (p.current + p.views - 1) % p.views }
func (p *cyclingPanel) Current() (int, int) { return p.current, p.views }

type gaugePanel struct {
	execPanel
	cleared int
}

func (p *gaugePanel) Usage() sysfs.MemUsage { return sysfs.MemUsage{UsedPercent: 40, Progress: 40} }
func (p *gaugePanel) ClearMemory(context.Context) error {
	p.cleared++
	return nil
}

type logPanel struct {
	execPanel
	logfile    bool
	removed    int
	removedAll int
}

func (p *logPanel) IsLogfile() bool { return p.logfile }
func (p *logPanel) RemoveCurrent() error {
	p.removed++
	return nil
}
func (p *logPanel) RemoveAll() error {
	p.removedAll++
	return errors.New("permission denied")
}

type fakeHistory struct {
	samples []model.MemorySample
}

func (h fakeHistory) MemoryHistory(limit int) ([]model.MemorySample, error) {
	return h.samples, nil
}

func echoRunner() console.Runner {
	return console.RunnerFunc(func(_ context.Context, cmd string) console.Result {
		return console.Result{Output: "out of " + cmd + "\n"}
	})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain executes cmd and every command it leads to, feeding messages back
// into the model. Spinner ticks and quit are not fed back.
func drain(m tea.Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, SpinnerTickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

// send delivers msg to the model and drains the resulting commands.
func send(m tea.Model, msg tea.Msg) {
	_, cmd := m.Update(msg)
	drain(m, cmd)
}

// isQuit reports whether cmd produces tea.QuitMsg.
func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func failingRunner() console.Runner {
	return console.RunnerFunc(func(context.Context, string) console.Result {
		return console.Result{ExitStatus: 127}
	})
}
