package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModal lists every key binding.
type HelpModal struct {
	ctx      ModalContext
	keys     KeyMap
	viewport viewport.Model
}

func NewHelpModal(ctx ModalContext, keys KeyMap) *HelpModal {
	return &HelpModal{
		ctx:      ctx,
		keys:     keys,
		viewport: viewport.New(80, 20),
	}
}

func (h *HelpModal) ID() string { return "help" }

func (h *HelpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "?", "escape", "esc", "q":
			return true, nil
		}
	}
	scrollViewport(&h.viewport, h.ctx, msg)
	return false, nil
}

func (h *HelpModal) View(width, height int) string {
	return renderScrollModal(&h.viewport, "Help", h.content(), renderModalStatusBar("up/down/Wheel: Scroll", "?/ESC: Close"), width, height)
}

func (h *HelpModal) content() string {
	hm := help.New()
	hm.ShowAll = true
	intro := lipgloss.NewStyle().Bold(true).Render("Box information") + "\n\n" +
		"Pick a panel from the menu to collect it. Panels with several\n" +
		"views (Latest Commits, Troubleshoot) page with left/right.\n" +
		"c clears the page cache on Memory Info; d and D remove crash\n" +
		"logfiles on Troubleshoot after confirmation, and p groups\n" +
		"the current view into recurring log patterns.\n\n"
	return intro + hm.View(h.keys)
}
