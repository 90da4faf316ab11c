package models

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/messages"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// MockConversationService implements driving.ConversationService for testing.
type MockConversationService struct {
	SwitchModelFunc func(ctx context.Context, sessionID, model string) error
	ModelsList      []domain.ModelInfo
}

func (m *MockConversationService) Ask(context.Context, string, string, driving.GenerateOptions) (*domain.Turn, error) {
	return nil, nil
}

func (m *MockConversationService) Edit(context.Context, string, int, string, driving.GenerateOptions) (*domain.Turn, error) {
	return nil, nil
}

func (m *MockConversationService) Retry(context.Context, string, driving.GenerateOptions) (*domain.Turn, error) {
	return nil, nil
}

func (m *MockConversationService) SwitchModel(ctx context.Context, sessionID, model string) error {
	if m.SwitchModelFunc != nil {
		return m.SwitchModelFunc(ctx, sessionID, model)
	}
	return nil
}

func (m *MockConversationService) Transcript(context.Context, string) ([]domain.Turn, error) {
	return nil, nil
}

func (m *MockConversationService) Models() []domain.ModelInfo {
	return m.ModelsList
}

func catalogue() []domain.ModelInfo {
	return []domain.ModelInfo{
		{ID: "gpt-4o-mini", Provider: domain.AIProviderOpenAI, Family: "GPT-4o", Description: "Fast and cheap"},
		{ID: "gpt-4o", Provider: domain.AIProviderOpenAI, Family: "GPT-4o", Description: "Flagship"},
		{ID: "gpt-5", Provider: domain.AIProviderOpenAI, Family: "GPT-5", Description: "Reasoning"},
	}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, "s1")

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.Nil(t, v.Init())
	assert.Equal(t, "", v.Selected())
}

func TestView_Refresh(t *testing.T) {
	v := NewView(nil, &MockConversationService{ModelsList: catalogue()}, "s1")

	v.Refresh("gpt-4o")

	assert.Equal(t, "gpt-4o", v.Current())
	assert.Equal(t, "gpt-4o", v.Selected())

	view := v.View()
	assert.Contains(t, view, "Models (3)")
	assert.Contains(t, view, "* gpt-4o")
	assert.Contains(t, view, "GPT-4o / openai")
	assert.Contains(t, view, "Reasoning (fixed temperature)")
}

func TestView_Refresh_NoService(t *testing.T) {
	v := NewView(nil, nil, "s1")

	v.Refresh("gpt-4o")

	assert.Contains(t, v.View(), "No models available")
}

func TestView_SwitchModel(t *testing.T) {
	var gotSession, gotModel string
	svc := &MockConversationService{
		ModelsList: catalogue(),
		SwitchModelFunc: func(_ context.Context, sessionID, model string) error {
			gotSession, gotModel = sessionID, model
			return nil
		},
	}
	v := NewView(nil, svc, "s1")
	v.Refresh("gpt-4o-mini")

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Contains(t, v.View(), "Switching model...")

	// A second enter while switching is ignored.
	_, again := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	msg := cmd().(messages.ModelSwitched)
	assert.Equal(t, "s1", gotSession)
	assert.Equal(t, "gpt-4o", gotModel)
	assert.Equal(t, "gpt-4o", msg.Model)

	v.Update(msg)
	assert.Equal(t, "gpt-4o", v.Current())
	assert.NotContains(t, v.View(), "Switching model...")
}

func TestView_SwitchModel_Error(t *testing.T) {
	svc := &MockConversationService{
		ModelsList: catalogue(),
		SwitchModelFunc: func(context.Context, string, string) error {
			return domain.ErrUnknownModel
		},
	}
	v := NewView(nil, svc, "s1")
	v.Refresh("gpt-4o-mini")
	v.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrUnknownModel)
	assert.Equal(t, "gpt-4o-mini", v.Current())
	assert.Contains(t, v.View(), "Error:")
}

func TestView_SelectCurrentReturnsToChat(t *testing.T) {
	v := NewView(nil, &MockConversationService{ModelsList: catalogue()}, "s1")
	v.Refresh("gpt-4o-mini")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())
}

func TestView_Back(t *testing.T) {
	v := NewView(nil, nil, "s1")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())
}

func TestView_NoServiceSwitch(t *testing.T) {
	v := NewView(nil, nil, "s1")

	msg := v.switchTo("gpt-4o")().(messages.ModelSwitched)
	assert.ErrorIs(t, msg.Err, errNoConversationService)
}
