// Package models provides the model picker view for the TUI.
package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/components/list"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/messages"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/styles"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

var errNoConversationService = errors.New("conversation service not available")

// View lets the user pick the session's generation model.
type View struct {
	styles              *styles.Styles
	conversationService driving.ConversationService
	ctx                 context.Context
	sessionID           string

	list      *list.List
	current   string
	switching bool
	err       error
}

// NewView creates a new model picker.
func NewView(s *styles.Styles, conversationService driving.ConversationService, sessionID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:              s,
		conversationService: conversationService,
		ctx:                 context.Background(),
		sessionID:           sessionID,
		list:                list.New(s, "Models", "No models available. Configure a provider with: docsassistant settings"),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Refresh reloads the catalogue and highlights the active model.
func (v *View) Refresh(current string) {
	v.current = current
	v.err = nil
	v.switching = false
	if v.conversationService == nil {
		v.list.SetItems(nil)
		return
	}

	models := v.conversationService.Models()
	items := make([]list.Item, 0, len(models))
	selected := 0
	for i, m := range models {
		if m.ID == current {
			selected = i
		}
		detail := m.Description
		if m.Reasoning() {
			detail += " (fixed temperature)"
		}
		items = append(items, list.Item{
			Key:    m.ID,
			Title:  m.ID,
			Meta:   fmt.Sprintf("%s / %s", m.Family, m.Provider),
			Detail: detail,
			Marked: m.ID == current,
		})
	}
	v.list.SetItems(items)
	v.list.SetSelected(selected)
}

// switchTo returns a command that switches the session model.
func (v *View) switchTo(model string) tea.Cmd {
	return func() tea.Msg {
		if v.conversationService == nil {
			return messages.ModelSwitched{Model: model, Err: errNoConversationService}
		}
		err := v.conversationService.SwitchModel(v.ctx, v.sessionID, model)
		return messages.ModelSwitched{Model: model, Err: err}
	}
}

// Update handles messages for the model picker.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewChat}
			}
		case "enter":
			item := v.list.SelectedItem()
			if item == nil || v.switching {
				return v, nil
			}
			if item.Key == v.current {
				return v, func() tea.Msg {
					return messages.ViewChanged{View: messages.ViewChat}
				}
			}
			v.switching = true
			return v, v.switchTo(item.Key)
		}
		v.list.Update(msg)
		return v, nil

	case messages.ModelSwitched:
		v.switching = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.Refresh(msg.Model)
		return v, nil
	}

	return v, nil
}

// View renders the model picker.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.list.View())
	b.WriteString("\n\n")

	switch {
	case v.switching:
		b.WriteString(v.styles.Muted.Render("Switching model..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] use model  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.list.SetDimensions(width, height-4)
}

// Current returns the active model.
func (v *View) Current() string {
	return v.current
}

// Selected returns the highlighted model ID, or "".
func (v *View) Selected() string {
	if item := v.list.SelectedItem(); item != nil {
		return item.Key
	}
	return ""
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
