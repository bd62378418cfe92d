package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for the TUI. Up/Down/Flat color the change
// direction of instruments; the rest style the chrome around the canvas.
type Theme struct {
	Name   string
	Title  lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Border lipgloss.Color
	Accent lipgloss.Color
	Up     lipgloss.Color
	Down   lipgloss.Color
	Flat   lipgloss.Color
}

// Available themes
var (
	ThemeDark = Theme{
		Name:   "dark",
		Title:  lipgloss.Color("#e2e8f0"),
		Text:   lipgloss.Color("#cbd5e1"),
		Muted:  lipgloss.Color("#64748b"),
		Border: lipgloss.Color("#334155"),
		Accent: lipgloss.Color("#38bdf8"),
		Up:     lipgloss.Color("#22c55e"),
		Down:   lipgloss.Color("#ef4444"),
		Flat:   lipgloss.Color("#6b7280"),
	}

	ThemePhosphor = Theme{
		Name:   "phosphor",
		Title:  lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#00cc00"),
		Muted:  lipgloss.Color("#005500"),
		Border: lipgloss.Color("#004400"),
		Accent: lipgloss.Color("#88ff88"),
		Up:     lipgloss.Color("#88ff88"),
		Down:   lipgloss.Color("#ffff00"),
		Flat:   lipgloss.Color("#008800"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Title:  lipgloss.Color("#e0f0ff"),
		Text:   lipgloss.Color("#a8d4ee"),
		Muted:  lipgloss.Color("#4488aa"),
		Border: lipgloss.Color("#1a4a66"),
		Accent: lipgloss.Color("#ffd700"),
		Up:     lipgloss.Color("#00ff88"),
		Down:   lipgloss.Color("#ff6655"),
		Flat:   lipgloss.Color("#5599bb"),
	}

	ThemePaper = Theme{
		Name:   "paper",
		Title:  lipgloss.Color("#1e293b"),
		Text:   lipgloss.Color("#334155"),
		Muted:  lipgloss.Color("#94a3b8"),
		Border: lipgloss.Color("#cbd5e1"),
		Accent: lipgloss.Color("#2563eb"),
		Up:     lipgloss.Color("#15803d"),
		Down:   lipgloss.Color("#b91c1c"),
		Flat:   lipgloss.Color("#6b7280"),
	}

	// Default theme
	CurrentTheme = ThemeDark

	// All available themes
	Themes = []Theme{
		ThemeDark,
		ThemePhosphor,
		ThemeOcean,
		ThemePaper,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDark
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
