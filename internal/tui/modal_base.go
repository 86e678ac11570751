package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// renderScrollModal renders a scrollable modal with the given content.
func renderScrollModal(vp *viewport.Model, title, content, status string, width, height int) string {
	modalWidth := max(width-8, 20)
	modalHeight := max(height-4, 8)

	contentWidth := modalWidth - 4
	contentHeight := modalHeight - 4

	vp.Width = contentWidth
	vp.Height = contentHeight
	vp.SetContent(content)

	contentPane := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Render(vp.View())

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(ColorBlue).
		Bold(true).
		Render(title)

	statusBar := helpStyle.Render(status)

	modal := lipgloss.JoinVertical(lipgloss.Left, header, contentPane, statusBar)

	finalModal := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(modal)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, finalModal)
}

func renderModalStatusBar(items ...string) string {
	return strings.Join(items, " | ")
}

// scrollViewport applies the shared scroll keys and wheel handling.
// It reports whether msg was consumed.
func scrollViewport(vp *viewport.Model, ctx ModalContext, msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			vp.ScrollUp(1)
		case "down", "j":
			vp.ScrollDown(1)
		case "pgup":
			vp.HalfPageUp()
		case "pgdown", "pagedown":
			vp.HalfPageDown()
		case "home":
			vp.GotoTop()
		case "end":
			vp.GotoBottom()
		default:
			return false
		}
		return true

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return false
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if ctx.ReverseScrollWheel {
				vp.ScrollDown(1)
			} else {
				vp.ScrollUp(1)
			}
			return true
		case tea.MouseButtonWheelDown:
			if ctx.ReverseScrollWheel {
				vp.ScrollUp(1)
			} else {
				vp.ScrollDown(1)
			}
			return true
		}
	}
	return false
}
