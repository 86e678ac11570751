package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/boxinfo/internal/model"
)

const memoryChartHeight = 6

// renderMemoryChart draws recent used-percent samples as a bar chart. It
// returns "" when there is nothing to draw.
func renderMemoryChart(samples []model.MemorySample, width int) string {
	if len(samples) == 0 || width < 24 {
		return ""
	}

	legendWidth := 16
	chartWidth := max(width-legendWidth-4, 20)
	maxBars := chartWidth / 2

	start := 0
	if len(samples) > maxBars {
		start = len(samples) - maxBars
	}
	shown := samples[start:]

	bc := barchart.New(chartWidth, memoryChartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	minUsed, maxUsed := shown[0].UsedPercent, shown[0].UsedPercent
	for _, s := range shown {
		minUsed = min(minUsed, s.UsedPercent)
		maxUsed = max(maxUsed, s.UsedPercent)
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: "USED", Value: s.UsedPercent, Style: usageStyle(s.UsedPercent)},
			},
		})
	}
	bc.Draw()

	latest := shown[len(shown)-1]
	legend := strings.Join([]string{
		fmt.Sprintf("Now: %5.1f %%", latest.UsedPercent),
		fmt.Sprintf("Min: %5.1f %%", minUsed),
		fmt.Sprintf("Max: %5.1f %%", maxUsed),
		helpStyle.Render(fmt.Sprintf("%d samples", len(shown))),
	}, "\n")

	title := chartTitleStyle.Render("Memory used")
	chart := lipgloss.JoinHorizontal(lipgloss.Top, bc.View(), "  ", legend)
	return sectionStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, chart))
}

func usageStyle(used float64) lipgloss.Style {
	color := ColorGreen
	switch {
	case used >= 90:
		color = ColorRed
	case used >= 75:
		color = ColorOrange
	}
	return lipgloss.NewStyle().Foreground(color).Background(color)
}
