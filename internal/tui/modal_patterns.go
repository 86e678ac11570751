package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/boxinfo/internal/logparse"
)

const patternBarWidth = 12

// PatternsModal shows the drain3 templates mined from the lines of the
// current troubleshoot view. The view itself stays verbatim.
type PatternsModal struct {
	ctx      ModalContext
	title    string
	patterns []logparse.Pattern
	lines    int
	viewport viewport.Model
}

func NewPatternsModal(ctx ModalContext, title string, lines []string) *PatternsModal {
	m := &PatternsModal{ctx: ctx, title: title, viewport: viewport.New(80, 20)}
	miner, err := logparse.NewPatternMiner()
	if err != nil {
		log.Printf("tui: log patterns: %v", err)
		return m
	}
	miner.AddLines(lines)
	m.patterns = miner.Top(0)
	_, m.lines = miner.Stats()
	return m
}

func (m *PatternsModal) ID() string { return "patterns" }

func (m *PatternsModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "p", "escape", "esc", "q":
			return true, nil
		}
	}
	scrollViewport(&m.viewport, m.ctx, msg)
	return false, nil
}

func (m *PatternsModal) View(width, height int) string {
	title := "Log Patterns"
	if len(m.patterns) > 0 {
		title = fmt.Sprintf("Log Patterns (%d patterns from %d lines)", len(m.patterns), m.lines)
	}
	status := renderModalStatusBar("up/down/Wheel: Scroll", "p/ESC: Close")
	return renderScrollModal(&m.viewport, title, m.content(max(width-12, 20)), status, width, height)
}

func (m *PatternsModal) content(width int) string {
	header := chartTitleStyle.Render(m.title)
	if len(m.patterns) == 0 {
		return header + "\n\n" + helpStyle.Render("No log lines to group")
	}

	maxCount := m.patterns[0].Count
	templateWidth := max(width-24, 20)
	lines := []string{header, ""}
	for i, p := range m.patterns {
		fill := p.Count * patternBarWidth / maxCount
		if fill == 0 {
			fill = 1
		}
		bar := strings.Repeat("█", fill) + strings.Repeat("░", patternBarWidth-fill)

		var barColor lipgloss.Color
		switch {
		case i < 3:
			barColor = ColorRed
		case i < 6:
			barColor = ColorOrange
		default:
			barColor = ColorBlue
		}

		template := p.Template
		if len(template) > templateWidth {
			template = template[:templateWidth-3] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s %s │ %s",
			lipgloss.NewStyle().Foreground(barColor).Render(bar),
			lipgloss.NewStyle().Foreground(ColorGray).Render(fmt.Sprintf("%5d", p.Count)),
			template,
		))
	}
	return strings.Join(lines, "\n")
}
