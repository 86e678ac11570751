package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/boxinfo/internal/logparse"
)

// tintLines colors each line by the severity logparse finds in it.
func tintLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		color, ok := severityColor(logparse.Classify(line))
		if !ok {
			out[i] = line
			continue
		}
		out[i] = lipgloss.NewStyle().Foreground(color).Render(line)
	}
	return out
}
