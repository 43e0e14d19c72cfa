package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the canvas and the side panel.
type Theme struct {
	Name   string
	Bodies lipgloss.Color
	Title  lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Border lipgloss.Color
	Calm   lipgloss.Color
	Busy   lipgloss.Color
	Alert  lipgloss.Color
}

var (
	ThemeLagoon = Theme{
		Name:   "lagoon",
		Bodies: lipgloss.Color("#3fc1c9"),
		Title:  lipgloss.Color("#fce38a"),
		Label:  lipgloss.Color("#7f8c99"),
		Value:  lipgloss.Color("#e8f6f7"),
		Border: lipgloss.Color("#2d4654"),
		Calm:   lipgloss.Color("#5fd68a"),
		Busy:   lipgloss.Color("#f2a541"),
		Alert:  lipgloss.Color("#f95f62"),
	}

	ThemeEmber = Theme{
		Name:   "ember",
		Bodies: lipgloss.Color("#ff7a45"),
		Title:  lipgloss.Color("#ffd166"),
		Label:  lipgloss.Color("#8d6e63"),
		Value:  lipgloss.Color("#fff3e0"),
		Border: lipgloss.Color("#4e342e"),
		Calm:   lipgloss.Color("#a5d6a7"),
		Busy:   lipgloss.Color("#ffb74d"),
		Alert:  lipgloss.Color("#e53935"),
	}

	ThemeMono = Theme{
		Name:   "mono",
		Bodies: lipgloss.Color("#ffffff"),
		Title:  lipgloss.Color("#ffffff"),
		Label:  lipgloss.Color("#8a8a8a"),
		Value:  lipgloss.Color("#d0d0d0"),
		Border: lipgloss.Color("#4a4a4a"),
		Calm:   lipgloss.Color("#d0d0d0"),
		Busy:   lipgloss.Color("#a0a0a0"),
		Alert:  lipgloss.Color("#ffffff"),
	}

	ThemeOrchid = Theme{
		Name:   "orchid",
		Bodies: lipgloss.Color("#c77dff"),
		Title:  lipgloss.Color("#80ffdb"),
		Label:  lipgloss.Color("#7b6d8d"),
		Value:  lipgloss.Color("#f3e8ff"),
		Border: lipgloss.Color("#3c096c"),
		Calm:   lipgloss.Color("#72efdd"),
		Busy:   lipgloss.Color("#ffbe0b"),
		Alert:  lipgloss.Color("#ff006e"),
	}

	Themes = []Theme{ThemeLagoon, ThemeEmber, ThemeMono, ThemeOrchid}
)

// GetTheme returns the named theme, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
