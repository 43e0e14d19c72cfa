package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas lipgloss.Style
	panel  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	calm   lipgloss.Style
	busy   lipgloss.Style
	alert  lipgloss.Style
}

// Canvas padding; mouse coordinates are offset by it.
const (
	canvasPadTop  = 1
	canvasPadLeft = 2
)

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(canvasPadTop, canvasPadLeft).Foreground(t.Bodies),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(1, 2).
			Width(40),
		header: lipgloss.NewStyle().Foreground(t.Title).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Label).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Value),
		graph:  lipgloss.NewStyle().Foreground(t.Bodies).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Label).MarginTop(1),
		calm:   lipgloss.NewStyle().Foreground(t.Calm).Bold(true),
		busy:   lipgloss.NewStyle().Foreground(t.Busy).Bold(true),
		alert:  lipgloss.NewStyle().Foreground(t.Alert).Bold(true),
	}
}

// Gauge renders a fill bar for fraction in [0, 1].
func Gauge(fraction float64, width int) string {
	filled := int(fraction*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders the last width values as block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("▁", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(len(chars)-1, idx))])
	}
	return b.String()
}
