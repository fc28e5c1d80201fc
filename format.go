package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var (
	accent       = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	subtle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	panel        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Underline(true)
	statusAhead  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	statusOn     = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	statusBehind = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// formatNumber renders a metric with thousands separators and no decimals.
func formatNumber(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	return printer.Sprintf("%.0f", math.Round(value))
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%0.1f%%", value)
}

// paceLabel compares achievement against elapsed time, both as percentages.
func paceLabel(achPct, elapsedPct float64) string {
	delta := achPct - elapsedPct
	if delta >= 10 {
		return "Ahead"
	}
	if delta <= -10 {
		return "Behind"
	}
	return "On Track"
}

func renderPaceLabel(label string) string {
	switch label {
	case "Ahead":
		return statusAhead.Render("Ahead")
	case "Behind":
		return statusBehind.Render("Behind")
	default:
		return statusOn.Render("On Track")
	}
}

// bar draws pct (0-100, clamped) as a fixed width gauge.
func bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(clamp(pct, 0, 100) / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
