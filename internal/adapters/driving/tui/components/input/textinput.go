// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/styles"
)

// DefaultPlaceholder is shown while the input is empty.
const DefaultPlaceholder = "Ask about your documents, or type /help"

// CharLimit caps a single message.
const CharLimit = 4000

// ChatInput wraps a bubbles textinput with chat-specific styling.
// While editing an earlier message the label shows which one.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewChatInput creates a new chat input component.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = DefaultPlaceholder
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = CharLimit
	ti.Width = 60

	return &ChatInput{
		textinput: ti,
		styles:    s,
		label:     "You",
		width:     70,
	}
}

// Init initialises the chat input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the chat input.
func (c *ChatInput) View() string {
	label := c.styles.User.Render(c.label + ": ")
	field := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value and moves the cursor to the end.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
	c.textinput.CursorEnd()
}

// SetLabel changes the label shown before the field.
func (c *ChatInput) SetLabel(label string) {
	c.label = label
}

// Label returns the current label.
func (c *ChatInput) Label() string {
	return c.label
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	// Account for label, border and padding
	inputWidth := width - lipgloss.Width(c.label) - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the input and restores the default label.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
	c.label = "You"
}
