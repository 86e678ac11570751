package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy   = lipgloss.Color("#1B2B4B")
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("#49E209")
	ColorGray   = lipgloss.Color("244")
	ColorWhite  = lipgloss.Color("15")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorPink   = lipgloss.Color("201")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorGray)

	activeSectionStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorBlue)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	selectedStyle = lipgloss.NewStyle().
			Background(ColorBlue).
			Foreground(ColorWhite).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

// severityColor returns the tint for a severity level. INFO lines keep
// the terminal default.
func severityColor(severity string) (lipgloss.Color, bool) {
	switch severity {
	case "FATAL":
		return ColorPink, true
	case "ERROR":
		return ColorRed, true
	case "WARN":
		return ColorOrange, true
	case "DEBUG", "TRACE":
		return ColorGray, true
	default:
		return "", false
	}
}
