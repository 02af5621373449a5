package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the terminal panel.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text and the waiting indicator.
	Muted lipgloss.Color

	// Success indicates a published memoria.
	Success lipgloss.Color

	// Error indicates a failed generation.
	Error lipgloss.Color

	// Border is the preview box border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
	}
}

// Styles contains pre-configured lipgloss styles for the panel.
type Styles struct {
	theme *Theme

	// Title style for the panel header.
	Title lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for the dimmed waiting indicator and help text.
	Muted lipgloss.Style

	// Success style for the published banner.
	Success lipgloss.Style

	// Error style for failure messages.
	Error lipgloss.Style

	// Preview style for the memoria preview box.
	Preview lipgloss.Style

	// Help style for the keybinding hints.
	Help lipgloss.Style
}

// DefaultStyles returns styles built on the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// NewStyles builds styles from a theme.
func NewStyles(theme *Theme) *Styles {
	return &Styles{
		theme: theme,
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),
		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),
		Preview: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// Theme returns the underlying theme.
func (s *Styles) Theme() *Theme {
	return s.theme
}
