package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/boxinfo/internal/panel"
)

// MenuPage lists the panels.
type MenuPage struct {
	ModalStack

	panels   []panel.Source
	tr       panel.Translator
	subtitle string
	keys     KeyMap
	help     help.Model
	ctx      ModalContext
	cursor   int
}

func NewMenuPage(opts Options, keys KeyMap) *MenuPage {
	return &MenuPage{
		panels:   opts.Panels,
		tr:       opts.Translator,
		subtitle: opts.Subtitle,
		keys:     keys,
		help:     help.New(),
		ctx:      ModalContext{ReverseScrollWheel: opts.ReverseScrollWheel},
	}
}

func (m *MenuPage) ID() string { return menuPageID }

func (m *MenuPage) Init() tea.Cmd { return nil }

// Selected returns the panel under the cursor.
func (m *MenuPage) Selected() panel.Source {
	if len(m.panels) == 0 {
		return nil
	}
	return m.panels[m.cursor]
}

func (m *MenuPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.ForceQuit) {
		return tea.Quit, nil
	}
	if cmd, ok := m.routeToModal(msg); ok {
		return cmd, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		k := m.keys
		switch {
		case key.Matches(msg, k.Quit), key.Matches(msg, k.Escape):
			return tea.Quit, nil
		case key.Matches(msg, k.Help):
			m.PushModal(NewHelpModal(m.ctx, m.keys))
		case key.Matches(msg, k.Up):
			m.move(-1)
		case key.Matches(msg, k.Down):
			m.move(1)
		case key.Matches(msg, k.Home):
			m.cursor = 0
		case key.Matches(msg, k.End):
			m.cursor = max(len(m.panels)-1, 0)
		case key.Matches(msg, k.Enter), key.Matches(msg, k.Right):
			if src := m.Selected(); src != nil {
				return nil, &PageNav{PageID: panelPageID, Params: src}
			}
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			delta := 0
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				delta = -1
			case tea.MouseButtonWheelDown:
				delta = 1
			}
			if m.ctx.ReverseScrollWheel {
				delta = -delta
			}
			m.move(delta)
		}
	}
	return nil, nil
}

func (m *MenuPage) move(delta int) {
	if len(m.panels) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.panels)-1, m.cursor+delta))
}

func (m *MenuPage) View(width, height int) string {
	if modal := m.TopModal(); modal != nil {
		return modal.View(width, height)
	}

	header := renderBranding()
	if m.subtitle != "" {
		header += helpStyle.Render("  " + m.subtitle)
	}

	var rows []string
	for i, src := range m.panels {
		title := src.Title()
		if m.tr != nil {
			title = m.tr.T(title)
		}
		line := fmt.Sprintf(" %2d  %s ", i+1, title)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		rows = append(rows, helpStyle.Render("No panels available"))
	}

	boxWidth := max(min(width-2, 60), 20)
	list := sectionStyle.Width(boxWidth).Render(strings.Join(rows, "\n"))
	status := m.help.ShortHelpView(menuHelp{m.keys}.ShortHelp())

	body := lipgloss.JoinVertical(lipgloss.Left, header, list)
	bodyHeight := max(height-1, lipgloss.Height(body))
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Height(bodyHeight).Render(body),
		status,
	)
}

// renderBranding renders "boxinfo" with a green to light blue gradient.
func renderBranding() string {
	colors := []string{
		"#49E209",
		"#35DD2F",
		"#21D955",
		"#0DD47B",
		"#00D0A1",
		"#00CAC7",
		"#00B8E0",
	}
	var b strings.Builder
	for i, char := range "boxinfo" {
		style := lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(lipgloss.Color(colors[i])).Bold(true)
		b.WriteString(style.Render(string(char)))
	}
	return b.String()
}
