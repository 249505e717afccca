package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for the chat interface.
type Theme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Primary colors the user side of the conversation, Secondary the
	// assistant side. Accent marks cards and follow-up hints.
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

var (
	// TokyoNightTheme is the default dark theme
	TokyoNightTheme = Theme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary: lipgloss.Color("#7aa2f7"),
		Accent:  lipgloss.Color("#bb9af7"),
		Warning: lipgloss.Color("#e0af68"),
		Error:   lipgloss.Color("#f7768e"),

		Text:    lipgloss.Color("#c0caf5"),
		TextDim: lipgloss.Color("#565f89"),
	}

	// CatppuccinTheme is based on the Catppuccin Mocha palette
	CatppuccinTheme = Theme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",

		Background: lipgloss.Color("#1e1e2e"),
		Surface:    lipgloss.Color("#313244"),
		Border:     lipgloss.Color("#45475a"),

		Primary: lipgloss.Color("#89b4fa"),
		Accent:  lipgloss.Color("#cba6f7"),
		Warning: lipgloss.Color("#f9e2af"),
		Error:   lipgloss.Color("#f38ba8"),

		Text:    lipgloss.Color("#cdd6f4"),
		TextDim: lipgloss.Color("#6c7086"),
	}

	// NordTheme is based on the Nord color palette
	NordTheme = Theme{
		Name:        "nord",
		Description: "Nord - Arctic-inspired theme with cool tones",

		Background: lipgloss.Color("#2e3440"),
		Surface:    lipgloss.Color("#3b4252"),
		Border:     lipgloss.Color("#4c566a"),

		Primary: lipgloss.Color("#88c0d0"),
		Accent:  lipgloss.Color("#b48ead"),
		Warning: lipgloss.Color("#ebcb8b"),
		Error:   lipgloss.Color("#bf616a"),

		Text:    lipgloss.Color("#eceff4"),
		TextDim: lipgloss.Color("#7b88a1"),
	}

	// DraculaTheme is based on the Dracula color palette
	DraculaTheme = Theme{
		Name:        "dracula",
		Description: "Dracula - Dark theme with vibrant colors",

		Background: lipgloss.Color("#282a36"),
		Surface:    lipgloss.Color("#44475a"),
		Border:     lipgloss.Color("#6272a4"),

		Primary: lipgloss.Color("#8be9fd"),
		Accent:  lipgloss.Color("#ff79c6"),
		Warning: lipgloss.Color("#f1fa8c"),
		Error:   lipgloss.Color("#ff5555"),

		Text:    lipgloss.Color("#f8f8f2"),
		TextDim: lipgloss.Color("#6272a4"),
	}
)

var activeTheme = TokyoNightTheme

// ActiveTheme returns the currently active chat theme
func ActiveTheme() Theme {
	return activeTheme
}

// SetTheme sets the active theme by name, reporting whether it exists
func SetTheme(name string) bool {
	theme, ok := ThemeByName(name)
	if ok {
		activeTheme = theme
	}
	return ok
}

// ThemeByName returns a theme by its name
func ThemeByName(name string) (Theme, bool) {
	switch name {
	case "tokyonight":
		return TokyoNightTheme, true
	case "catppuccin":
		return CatppuccinTheme, true
	case "nord":
		return NordTheme, true
	case "dracula":
		return DraculaTheme, true
	default:
		return Theme{}, false
	}
}

// AvailableThemes returns all built-in themes
func AvailableThemes() []Theme {
	return []Theme{
		TokyoNightTheme,
		CatppuccinTheme,
		NordTheme,
		DraculaTheme,
	}
}

// ThemeNames returns just the theme names for selection
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
