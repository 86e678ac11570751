package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

func newTestApp(opts Options) (*App, *MenuPage, *PanelPage) {
	keys := DefaultKeyMap()
	menu := NewMenuPage(opts, keys)
	page := NewPanelPage(opts, keys)
	return NewApp(menu, page), menu, page
}

func TestMenuOpensSelectedPanel(t *testing.T) {
	t.Parallel()

	first := &execPanel{id: "first"}
	second := &execPanel{id: "second", cmd: "uname -a"}
	app, menu, page := newTestApp(Options{Panels: []panel.Source{first, second}, Runner: echoRunner()})

	send(app, tea.KeyMsg{Type: tea.KeyDown})
	if got := menu.Selected(); got != second {
		t.Fatalf("selected = %v, want second", got)
	}

	send(app, tea.KeyMsg{Type: tea.KeyEnter})
	if got := app.ActivePage(); got != panelPageID {
		t.Fatalf("active page = %q, want %q", got, panelPageID)
	}
	if page.update.State != panel.Ready {
		t.Fatalf("state = %v, want ready", page.update.State)
	}
	want := []string{"header", "out of uname -a"}
	if got := page.update.Lines; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	if first.openCount() != 0 {
		t.Fatal("unselected panel was opened")
	}

	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	if got := app.ActivePage(); got != menuPageID {
		t.Fatalf("active page after esc = %q, want menu", got)
	}
}

func TestMenuCursorStaysInRange(t *testing.T) {
	t.Parallel()

	_, menu, _ := newTestApp(Options{Panels: []panel.Source{&execPanel{id: "a"}, &execPanel{id: "b"}}})
	menu.Update(tea.KeyMsg{Type: tea.KeyUp})
	if menu.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", menu.cursor)
	}
	for i := 0; i < 5; i++ {
		menu.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if menu.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", menu.cursor)
	}
}

func TestMenuQuit(t *testing.T) {
	t.Parallel()

	_, menu, _ := newTestApp(Options{})
	cmd, nav := menu.Update(keyRunes("q"))
	if nav != nil || !isQuit(cmd) {
		t.Fatal("q should quit from the menu")
	}
	if got := menu.View(80, 24); !strings.Contains(got, "No panels available") {
		t.Fatalf("empty menu view = %q", got)
	}
}

func TestHelpModalOpensAndCloses(t *testing.T) {
	t.Parallel()

	_, menu, _ := newTestApp(Options{Panels: []panel.Source{&execPanel{id: "a"}}})
	menu.Update(keyRunes("?"))
	if !menu.HasModal() {
		t.Fatal("help modal not pushed")
	}
	if got := menu.View(100, 40); !strings.Contains(got, "refresh") {
		t.Fatalf("help view does not list bindings: %q", got)
	}
	menu.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if menu.HasModal() {
		t.Fatal("help modal not closed by esc")
	}
}

func TestMemoryChartRendersHistory(t *testing.T) {
	t.Parallel()

	samples := []model.MemorySample{{UsedPercent: 20}, {UsedPercent: 55}, {UsedPercent: 91}}
	got := renderMemoryChart(samples, 80)
	for _, want := range []string{"Memory used", "Now:  91.0 %", "Min:  20.0 %", "3 samples"} {
		if !strings.Contains(got, want) {
			t.Errorf("chart missing %q:\n%s", want, got)
		}
	}
	if renderMemoryChart(nil, 80) != "" {
		t.Error("empty history should render nothing")
	}
}
