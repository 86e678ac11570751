package tui

import (
	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

// HistorySource returns recent memory samples, oldest first. The socket
// client of the daemon implements it.
type HistorySource interface {
	MemoryHistory(limit int) ([]model.MemorySample, error)
}

// Options configures the TUI.
type Options struct {
	Panels     []panel.Source
	Runner     console.Runner
	Translator panel.Translator
	// History is optional; without it the memory chart is not shown.
	History HistorySource
	// Subtitle is shown next to the branding on the menu, e.g. the box model.
	Subtitle           string
	ReverseScrollWheel bool
}

// New builds the application with its menu and panel pages.
func New(opts Options) *App {
	keys := DefaultKeyMap()
	return NewApp(
		NewMenuPage(opts, keys),
		NewPanelPage(opts, keys),
	)
}
