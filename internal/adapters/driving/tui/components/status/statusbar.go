// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/keymap"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/styles"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateIngesting State = "ingesting"
	StateError     State = "error"
)

// Bar displays session status and keybinding hints.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	state     State
	message   string
	stats     domain.SessionStats
	listHints bool
	width     int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar on a single line. When the bar is too narrow
// the hints are cut first, then the activity.
func (s *Bar) View() string {
	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()
	left := truncate(s.renderLeft(), inner)
	right := s.renderRight()

	if avail := inner - lipgloss.Width(left) - 1; lipgloss.Width(right) > avail {
		right = truncate(right, avail)
	}

	padding := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// truncate cuts styled text to width cells.
func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(text) <= width {
		return text
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(text)
}

// renderLeft renders the activity and session summary.
func (s *Bar) renderLeft() string {
	var activity string
	switch s.state {
	case StateThinking:
		activity = s.styles.Warning.Render("Thinking...")
	case StateIngesting:
		activity = s.styles.Warning.Render("Indexing...")
	case StateError:
		if s.message != "" {
			activity = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			activity = s.styles.Error.Render("Error")
		}
	default:
		activity = s.styles.Muted.Render("Ready")
	}

	if s.stats.SessionID == "" {
		return activity
	}
	return activity + s.styles.Muted.Render(" | "+s.Summary())
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if s.listHints {
		bindings = s.keymap.ListHelp()
	}
	return s.styles.Muted.Render(Hints(bindings...))
}

// Hints formats bindings as "key: desc" pairs.
func Hints(bindings ...key.Binding) string {
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return strings.Join(hints, " | ")
}

// Summary describes the session: model, document count and answer mode.
func (s *Bar) Summary() string {
	mode := "chat"
	if !s.stats.ChatMode() {
		mode = "documents"
	}
	return fmt.Sprintf("%s | %d doc(s) | %s", s.stats.Model, s.stats.DocumentsProcessed, mode)
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetStats updates the session summary.
func (s *Bar) SetStats(stats domain.SessionStats) {
	s.stats = stats
}

// Stats returns the last session summary.
func (s *Bar) Stats() domain.SessionStats {
	return s.stats
}

// SetListHints switches between chat and list keybinding hints.
func (s *Bar) SetListHints(list bool) {
	s.listHints = list
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to ready, keeping the session summary.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
