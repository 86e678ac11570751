package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModal asks a yes/no question and runs onYes when confirmed.
type ConfirmModal struct {
	id       string
	question string
	onYes    tea.Cmd
}

func NewConfirmModal(id, question string, onYes tea.Cmd) *ConfirmModal {
	return &ConfirmModal{id: id, question: question, onYes: onYes}
}

func (c *ConfirmModal) ID() string { return "confirm-" + c.id }

func (c *ConfirmModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch k.String() {
	case "y", "Y", "enter":
		return true, c.onYes
	case "n", "N", "escape", "esc", "q":
		return true, nil
	}
	return false, nil
}

func (c *ConfirmModal) View(width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Render(c.question),
		"",
		helpStyle.Render("y/enter: Yes | n/ESC: No"),
	)
	box := lipgloss.NewStyle().
		Padding(1, 3).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorOrange).
		Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
