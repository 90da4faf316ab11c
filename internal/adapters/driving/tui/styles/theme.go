// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the chat palette. Each colour carries a light and a dark
// variant; lipgloss picks one from the terminal background.
type Theme struct {
	// User marks the user's turns.
	User lipgloss.AdaptiveColor

	// Assistant marks the assistant's turns.
	Assistant lipgloss.AdaptiveColor

	// Text is the body text colour.
	Text lipgloss.AdaptiveColor

	// Faint is for citations, hints and the status summary.
	Faint lipgloss.AdaptiveColor

	// Good, Caution and Bad colour outcomes.
	Good    lipgloss.AdaptiveColor
	Caution lipgloss.AdaptiveColor
	Bad     lipgloss.AdaptiveColor

	// Frame outlines the input box.
	Frame lipgloss.AdaptiveColor

	// Bar is the status bar background.
	Bar lipgloss.AdaptiveColor
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() *Theme {
	return &Theme{
		User:      lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"},
		Assistant: lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"},
		Text:      lipgloss.AdaptiveColor{Light: "#4C4F69", Dark: "#CDD6F4"},
		Faint:     lipgloss.AdaptiveColor{Light: "#8C8FA1", Dark: "#6C7086"},
		Good:      lipgloss.AdaptiveColor{Light: "#40A02B", Dark: "#A6E3A1"},
		Caution:   lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"},
		Bad:       lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"},
		Frame:     lipgloss.AdaptiveColor{Light: "#BCC0CC", Dark: "#45475A"},
		Bar:       lipgloss.AdaptiveColor{Light: "#E6E9EF", Dark: "#181825"},
	}
}

// Styles are the rendered styles the views share.
type Styles struct {
	theme *Theme

	// Title and Subtitle head views and sections.
	Title    lipgloss.Style
	Subtitle lipgloss.Style

	// Normal is body text; Muted is secondary text.
	Normal lipgloss.Style
	Muted  lipgloss.Style

	// Selected highlights the list cursor row.
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// User and Assistant label transcript turns.
	User      lipgloss.Style
	Assistant lipgloss.Style

	// Citation indents source references under an answer.
	Citation lipgloss.Style

	// InputField frames the message box.
	InputField lipgloss.Style

	// StatusBar is the bottom line.
	StatusBar lipgloss.Style

	// Help renders key hints.
	Help lipgloss.Style
}

// NewStyles builds styles from theme, or the default theme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme: theme,

		Title:    fg(theme.User).Bold(true),
		Subtitle: fg(theme.Assistant).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Faint),
		Selected: fg(theme.Bar).Background(theme.User).Bold(true),

		Error:   fg(theme.Bad),
		Success: fg(theme.Good),
		Warning: fg(theme.Caution),

		User:      fg(theme.User).Bold(true),
		Assistant: fg(theme.Assistant).Bold(true),
		Citation:  fg(theme.Faint).PaddingLeft(2),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),

		StatusBar: fg(theme.Faint).Background(theme.Bar).Padding(0, 1),
		Help:      fg(theme.Faint),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
