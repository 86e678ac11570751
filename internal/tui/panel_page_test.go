package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

func openPage(t *testing.T, src panel.Source, opts Options) *PanelPage {
	t.Helper()
	if opts.Runner == nil {
		opts.Runner = echoRunner()
	}
	page := NewPanelPage(opts, DefaultKeyMap())
	drain(pageModel{page}, page.Enter(src))
	return page
}

// pageModel adapts a PanelPage to tea.Model for drain.
type pageModel struct{ p *PanelPage }

func (m pageModel) Init() tea.Cmd { return nil }
func (m pageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, _ := m.p.Update(msg)
	return m, cmd
}
func (m pageModel) View() string { return m.p.View(80, 24) }

func TestPanelPageRefresh(t *testing.T) {
	t.Parallel()

	src := &execPanel{id: "p", cmd: "free"}
	page := openPage(t, src, Options{})
	send(pageModel{page}, keyRunes("r"))

	if got := src.openCount(); got != 2 {
		t.Fatalf("opens = %d, want 2", got)
	}
	if page.update.State != panel.Ready {
		t.Fatalf("state = %v", page.update.State)
	}
}

func TestPanelPageCyclesViews(t *testing.T) {
	t.Parallel()

	src := &cyclingPanel{execPanel: execPanel{id: "commits", cmd: "log"}, views: 3}
	page := openPage(t, src, Options{})
	if got := page.title(); got != "Panel commits (1/3)" {
		t.Fatalf("title = %q", got)
	}

	send(pageModel{page}, tea.KeyMsg{Type: tea.KeyLeft})
	if got := page.title(); got != "Panel commits (3/3)" {
		t.Fatalf("title after left = %q", got)
	}
	send(pageModel{page}, tea.KeyMsg{Type: tea.KeyRight})
	send(pageModel{page}, tea.KeyMsg{Type: tea.KeyRight})
	if cur, _ := src.Current(); cur != 1 {
		t.Fatalf("current = %d, want 1", cur)
	}
	if got := src.openCount(); got != 4 {
		t.Fatalf("opens = %d, want 4", got)
	}
}

func TestPanelPageIgnoresCycleOnPlainPanel(t *testing.T) {
	t.Parallel()

	src := &execPanel{id: "plain"}
	page := openPage(t, src, Options{})
	cmd, nav := page.Update(tea.KeyMsg{Type: tea.KeyRight})
	if cmd != nil || nav != nil {
		t.Fatal("right on a plain panel should do nothing")
	}
}

func TestPanelPageClearMemory(t *testing.T) {
	t.Parallel()

	src := &gaugePanel{execPanel: execPanel{id: "memory"}}
	history := fakeHistory{samples: []model.MemorySample{{UsedPercent: 30}, {UsedPercent: 40}}}
	page := openPage(t, src, Options{History: history})
	if len(page.samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(page.samples))
	}
	if got := page.View(100, 40); !strings.Contains(got, "Memory used") {
		t.Fatalf("memory view has no chart:\n%s", got)
	}

	send(pageModel{page}, keyRunes("c"))
	if src.cleared != 1 {
		t.Fatalf("cleared = %d, want 1", src.cleared)
	}
	if got := src.openCount(); got != 2 {
		t.Fatalf("opens = %d, want refresh after clear", got)
	}
}

func TestPanelPageRemoveLogfileNeedsConfirmation(t *testing.T) {
	t.Parallel()

	src := &logPanel{execPanel: execPanel{id: "troubleshoot"}, logfile: true}
	page := openPage(t, src, Options{})
	m := pageModel{page}

	send(m, keyRunes("d"))
	if !page.HasModal() {
		t.Fatal("confirm modal not shown")
	}
	if src.removed != 0 {
		t.Fatal("removed before confirmation")
	}
	send(m, keyRunes("y"))
	if src.removed != 1 || page.HasModal() {
		t.Fatalf("removed = %d, modal = %v", src.removed, page.HasModal())
	}

	send(m, keyRunes("D"))
	send(m, keyRunes("n"))
	if src.removedAll != 0 {
		t.Fatal("remove all ran after n")
	}

	send(m, keyRunes("D"))
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if src.removedAll != 1 {
		t.Fatalf("removedAll = %d, want 1", src.removedAll)
	}
	if page.status != "permission denied" {
		t.Fatalf("status = %q", page.status)
	}
}

func TestPanelPageRemoveSkipsCommandViews(t *testing.T) {
	t.Parallel()

	src := &logPanel{execPanel: execPanel{id: "troubleshoot"}}
	page := openPage(t, src, Options{})
	page.Update(keyRunes("d"))
	if page.HasModal() {
		t.Fatal("d on a command view should not ask")
	}
}

func TestPanelPageDropsStaleResults(t *testing.T) {
	t.Parallel()

	src := &execPanel{id: "slow", cmd: "dmesg"}
	page := NewPanelPage(Options{Runner: echoRunner()}, DefaultKeyMap())
	pending := page.Enter(src)

	page.Update(tea.KeyMsg{Type: tea.KeyEsc})
	other := &execPanel{id: "other"}
	drain(pageModel{page}, page.Enter(other))
	drain(pageModel{page}, pending)

	if page.update.PanelID != "other" {
		t.Fatalf("panel = %q, want other", page.update.PanelID)
	}
	for _, l := range page.update.Lines {
		if strings.Contains(l, "dmesg") {
			t.Fatalf("stale result leaked into %q", page.update.Lines)
		}
	}
}

func TestPanelPageFailedRequestShowsErrorText(t *testing.T) {
	t.Parallel()

	page := openPage(t, &execPanel{id: "f", cmd: "missing"}, Options{Runner: failingRunner()})
	if page.update.State != panel.Failed {
		t.Fatalf("state = %v, want failed", page.update.State)
	}
	if got := page.update.Lines[1]; got != panel.ErrorText {
		t.Fatalf("line = %q", got)
	}
}

func TestTintLinesKeepsText(t *testing.T) {
	t.Parallel()

	lines := []string{"<3>dvb timeout", "plain"}
	got := tintLines(lines)
	if !strings.Contains(got[0], "dvb timeout") || got[1] != "plain" {
		t.Fatalf("tinted = %q", got)
	}
	if _, ok := severityColor("ERROR"); !ok {
		t.Fatal("ERROR should be tinted")
	}
	if _, ok := severityColor("INFO"); ok {
		t.Fatal("INFO should keep the default color")
	}
}

func TestPanelPageLogPatternsModal(t *testing.T) {
	t.Parallel()

	out := "usb 1-1: reset high-speed device number 2\n" +
		"usb 1-1: reset high-speed device number 3\n" +
		"usb 1-1: reset high-speed device number 4\n" +
		"EXT4-fs (sda1): mounted filesystem\n"
	runner := console.RunnerFunc(func(context.Context, string) console.Result {
		return console.Result{Output: out}
	})
	src := &logPanel{execPanel: execPanel{id: "troubleshoot", cmd: "dmesg"}}
	page := openPage(t, src, Options{Runner: runner})
	before := append([]string(nil), page.update.Lines...)

	send(pageModel{page}, keyRunes("p"))
	modal, ok := page.TopModal().(*PatternsModal)
	if !ok {
		t.Fatalf("top modal = %T, want *PatternsModal", page.TopModal())
	}
	if modal.lines != 5 {
		t.Errorf("mined lines = %d, want 5", modal.lines)
	}
	if len(modal.patterns) == 0 || modal.patterns[0].Count != 3 {
		t.Fatalf("patterns = %+v", modal.patterns)
	}
	if view := page.View(100, 30); !strings.Contains(view, "Log Patterns") {
		t.Errorf("view missing title:\n%s", view)
	}

	send(pageModel{page}, keyRunes("p"))
	if page.HasModal() {
		t.Fatal("p should close the patterns modal")
	}
	if strings.Join(page.update.Lines, "\n") != strings.Join(before, "\n") {
		t.Errorf("pane lines changed: %q", page.update.Lines)
	}
}

func TestPanelPageLogPatternsOnlyOnTroubleshoot(t *testing.T) {
	t.Parallel()

	page := openPage(t, &execPanel{id: "p", cmd: "free"}, Options{})
	page.Update(keyRunes("p"))
	if page.HasModal() {
		t.Fatal("p on a plain panel should do nothing")
	}
}
