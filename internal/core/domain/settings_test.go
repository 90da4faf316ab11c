package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider(t *testing.T) {
	tests := []struct {
		provider    AIProvider
		valid       bool
		needsKey    bool
		local       bool
		description string
	}{
		{AIProviderOpenAI, true, true, false, "OpenAI (cloud)"},
		{AIProviderAnthropic, true, true, false, "Anthropic (cloud)"},
		{AIProviderOllama, true, false, true, "Ollama (local)"},
		{AIProvider("mystery"), false, false, false, unknownDescription},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.needsKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.local, tt.provider.IsLocal())
			assert.Equal(t, tt.description, tt.provider.Description())
		})
	}
}

func TestProviderSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		apiKey   string
		expected bool
	}{
		{"openai with key", AIProviderOpenAI, "sk-test", true},
		{"openai without key", AIProviderOpenAI, "", false},
		{"ollama without key", AIProviderOllama, "", true},
		{"unset provider", AIProvider(""), "sk-test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb := EmbeddingSettings{Provider: tt.provider, APIKey: tt.apiKey}
			llm := LLMSettings{Provider: tt.provider, APIKey: tt.apiKey}
			assert.Equal(t, tt.expected, emb.IsConfigured())
			assert.Equal(t, tt.expected, llm.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
	assert.InDelta(t, 0.7, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 200, s.Chunking.Overlap)
	assert.Equal(t, 4, s.Retrieval.K)
	assert.Greater(t, s.Gateway.MaxAttempts, 1)
	assert.Equal(t, ImageModeOCR, s.Ingest.ImageMode)
	assert.Equal(t, 2*time.Hour, s.Session.IdleTimeout)

	// Unconfigured until an API key arrives from file or environment.
	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
}

func TestImageMode_IsValid(t *testing.T) {
	assert.True(t, ImageModeOCR.IsValid())
	assert.True(t, ImageModeVision.IsValid())
	assert.False(t, ImageMode("thermal").IsValid())
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	for provider, model := range DefaultEmbeddingModels() {
		assert.Greater(t, dims[model], 0, "default %s model %s has no dimension", provider, model)
	}
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
}
