package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines a color scheme for the TUI
type Theme struct {
	Name       string
	Background lipgloss.Color
	Border     lipgloss.Color
	Text       lipgloss.Color
	Secondary  lipgloss.Color
	Active     lipgloss.Color
	Accent     lipgloss.Color
	Badge      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

// Predefined themes
var Themes = []Theme{
	// 0: Tokyo Night
	{
		Name:       "Tokyo Night",
		Background: lipgloss.Color("#1a1b26"),
		Border:     lipgloss.Color("#3b4261"),
		Text:       lipgloss.Color("#c0caf5"),
		Secondary:  lipgloss.Color("#787c99"),
		Active:     lipgloss.Color("#7aa2f7"),
		Accent:     lipgloss.Color("#bb9af7"),
		Badge:      lipgloss.Color("#9aa5ce"),
		Success:    lipgloss.Color("#9ece6a"),
		Error:      lipgloss.Color("#f7768e"),
	},
	// 1: Light
	{
		Name:       "Light",
		Background: lipgloss.Color("#ffffff"),
		Border:     lipgloss.Color("#d0d7de"),
		Text:       lipgloss.Color("#24292f"),
		Secondary:  lipgloss.Color("#57606a"),
		Active:     lipgloss.Color("#0550ae"),
		Accent:     lipgloss.Color("#8250df"),
		Badge:      lipgloss.Color("#6e7781"),
		Success:    lipgloss.Color("#1a7f37"),
		Error:      lipgloss.Color("#cf222e"),
	},
	// 2: Cyberpunk/Neon
	{
		Name:       "Cyberpunk",
		Background: lipgloss.Color("#0a0a0a"),
		Border:     lipgloss.Color("#00ffff"),
		Text:       lipgloss.Color("#ffffff"),
		Secondary:  lipgloss.Color("#bdbdbd"),
		Active:     lipgloss.Color("#ff00ff"),
		Accent:     lipgloss.Color("#bf00ff"),
		Badge:      lipgloss.Color("#9e9e9e"),
		Success:    lipgloss.Color("#39ff14"),
		Error:      lipgloss.Color("#ff0000"),
	},
}

// CurrentThemeIndex tracks which theme is active
var CurrentThemeIndex = 0

// GetTheme returns the current theme
func GetTheme() Theme {
	return Themes[CurrentThemeIndex]
}

// SetTheme activates theme i, wrapping out-of-range values
func SetTheme(i int) {
	if i < 0 {
		i = 0
	}
	CurrentThemeIndex = i % len(Themes)
	ApplyTheme(Themes[CurrentThemeIndex])
}

// CycleTheme switches to the next theme
func CycleTheme() {
	SetTheme(CurrentThemeIndex + 1)
}

// ApplyTheme updates the global color variables to match the theme
func ApplyTheme(t Theme) {
	ColorBg = t.Background
	ColorBorder = t.Border
	ColorText = t.Text
	ColorSecondary = t.Secondary
	ColorActive = t.Active
	ColorAccent = t.Accent
	ColorBadge = t.Badge
	ColorSuccess = t.Success
	ColorError = t.Error

	// Update styles that derive from colors
	StyleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorActive)
	StyleKey = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	StyleFooter = lipgloss.NewStyle().Foreground(ColorText)
	StyleModal = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(ColorBorder).Padding(1, 2)
	StyleHelpText = lipgloss.NewStyle().Foreground(ColorAccent).Italic(true)

	StyleRowLabel = lipgloss.NewStyle().Foreground(ColorText)
	StyleBalance = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleBalanceError = lipgloss.NewStyle().Foreground(ColorError).MarginLeft(1)
	StyleBadge = lipgloss.NewStyle().
		Foreground(ColorBadge).
		Bold(true).
		Border(lipgloss.RoundedBorder(), false, true).
		BorderForeground(ColorBadge)
	StyleAction = lipgloss.NewStyle().Foreground(ColorActive).Underline(true)
	StyleActiveTag = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
}
