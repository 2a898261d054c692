package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders percent (0-100) as a bar of width cells followed by
// the percentage with one decimal. Out-of-range input is clamped.
func ProgressBar(percent float64, width int) string {
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	percent = min(percent, 100)
	if width < 1 {
		width = 1
	}

	filled := int(math.Round(percent / 100 * float64(width)))
	color := ColorInfo
	if percent >= 100 {
		color = ColorSuccess
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		StyleMeta.Render(strings.Repeat("░", width-filled))
	return bar + " " + StyleValue.Render(fmt.Sprintf("%5.1f%%", percent))
}
