package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are built from CurrentTheme at render time so a theme switch takes
// effect on the next frame.

func canvasStyle() lipgloss.Style {
	return lipgloss.NewStyle().Padding(1, 2)
}

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(CurrentTheme.Border).
		Padding(1, 2).
		Width(45)
}

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Title).Bold(true).MarginBottom(1)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(12)
}

func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Text)
}

func activeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
}

func graphStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Padding(1, 0)
}

func helpStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).MarginTop(2)
}

func recordingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Down).Bold(true)
}

// ChangeStyle colors text by the sign of a percent change. Moves inside
// +/-0.05% read as flat.
func ChangeStyle(pct float64) lipgloss.Style {
	switch {
	case pct > 0.05:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Up)
	case pct < -0.05:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Down)
	default:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Flat)
	}
}

// Sparkline renders a series as one row of block characters, colored by
// level. Values are normalized to the series' own min/max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", maxInt(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	high := lipgloss.NewStyle().Foreground(CurrentTheme.Up)
	mid := lipgloss.NewStyle().Foreground(CurrentTheme.Accent)
	low := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / span
		idx := int(norm * float64(len(chars)-1))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		if idx < 0 {
			idx = 0
		}
		c := string(chars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(high.Render(c))
		case norm > 0.3:
			b.WriteString(mid.Render(c))
		default:
			b.WriteString(low.Render(c))
		}
	}
	return b.String()
}

// bar renders a "[====------]" gauge for a 0..1 ratio.
func bar(ratio float64, width int) string {
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	filled := int(ratio * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
