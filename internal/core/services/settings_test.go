package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/storage/memory"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// noEnv hides the process environment from settings tests.
func noEnv(string) string { return "" }

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

// failingConfigStore fails Set for one key.
type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if key == f.failOn {
		return assert.AnError
	}
	return f.ConfigStore.Set(key, value)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil, WithEnv(noEnv))

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":          "ollama",
		"embedding.model":             "nomic-embed-text",
		"embedding.base_url":          "http://gpu:11434",
		"llm.provider":                "anthropic",
		"llm.model":                   "claude-3-5-haiku-latest",
		"llm.api_key":                 "sk-ant",
		"llm.temperature":             0.0,
		"llm.max_tokens":              int64(512),
		"chunking.size":               int64(800),
		"chunking.overlap":            int64(100),
		"retrieval.k":                 int64(6),
		"retrieval.min_similarity":    0.35,
		"gateway.batch_size":          int64(32),
		"gateway.initial_backoff":     "250ms",
		"gateway.requests_per_second": int64(2),
		"ingest.image_mode":           "vision",
		"ingest.vision_model":         "gpt-4o",
		"session.idle_timeout":        "30m",
		"log.file":                    "/tmp/assistant.log",
	})
	service := NewSettingsService(store, nil, WithEnv(noEnv))

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "http://gpu:11434", settings.Embedding.BaseURL)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.LLM.Model)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
	assert.Zero(t, settings.LLM.Temperature, "a stored zero temperature is kept")
	assert.Equal(t, 512, settings.LLM.MaxTokens)
	assert.Equal(t, 800, settings.Chunking.Size)
	assert.Equal(t, 100, settings.Chunking.Overlap)
	assert.Equal(t, 6, settings.Retrieval.K)
	assert.InDelta(t, 0.35, settings.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, 32, settings.Gateway.BatchSize)
	assert.Equal(t, 250*time.Millisecond, settings.Gateway.InitialBackoff)
	assert.InDelta(t, 2.0, settings.Gateway.RequestsPerSecond, 1e-9)
	assert.Equal(t, domain.ImageModeVision, settings.Ingest.ImageMode)
	assert.Equal(t, "gpt-4o", settings.Ingest.VisionModel)
	assert.Equal(t, 30*time.Minute, settings.Session.IdleTimeout)
	assert.Equal(t, "/tmp/assistant.log", settings.Log.File)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":   "invalid_provider",
		"ingest.image_mode":    "thermal",
		"session.idle_timeout": "soon",
		"gateway.max_backoff":  "-5s",
	})
	service := NewSettingsService(store, nil, WithEnv(noEnv))

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Ingest.ImageMode, settings.Ingest.ImageMode)
	assert.Equal(t, defaults.Session.IdleTimeout, settings.Session.IdleTimeout)
	assert.Equal(t, defaults.Gateway.MaxBackoff, settings.Gateway.MaxBackoff)
}

func TestSettingsService_Get_APIKeysFromEnvironment(t *testing.T) {
	tests := []struct {
		name      string
		stored    map[string]any
		wantEmbed string
		wantLLM   string
	}{
		{
			name:      "openai defaults read OPENAI_API_KEY",
			stored:    map[string]any{},
			wantEmbed: "sk-env-openai",
			wantLLM:   "sk-env-openai",
		},
		{
			name:      "anthropic reads ANTHROPIC_API_KEY",
			stored:    map[string]any{"llm.provider": "anthropic"},
			wantEmbed: "sk-env-openai",
			wantLLM:   "sk-env-anthropic",
		},
		{
			name:      "stored key wins",
			stored:    map[string]any{"llm.api_key": "sk-file"},
			wantEmbed: "sk-env-openai",
			wantLLM:   "sk-file",
		},
		{
			name:      "ollama needs none",
			stored:    map[string]any{"embedding.provider": "ollama", "llm.provider": "ollama"},
			wantEmbed: "",
			wantLLM:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(tt.stored), nil, WithEnv(env(map[string]string{
				EnvOpenAIAPIKey:    "sk-env-openai",
				EnvAnthropicAPIKey: "sk-env-anthropic",
			})))

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmbed, settings.Embedding.APIKey)
			assert.Equal(t, tt.wantLLM, settings.LLM.APIKey)
		})
	}
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil, WithEnv(noEnv))

	want := domain.DefaultAppSettings()
	want.LLM.Provider = domain.AIProviderOllama
	want.LLM.Model = "llama3.2"
	want.LLM.BaseURL = "http://localhost:11434"
	want.LLM.Temperature = 0
	want.Chunking.Size = 500
	want.Retrieval.MinSimilarity = 0.5
	want.Gateway.InitialBackoff = time.Second
	want.Session.IdleTimeout = 45 * time.Minute
	want.Embedding.APIKey = "sk-embed"

	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
	assert.Equal(t, "45m0s", store.GetString("session.idle_timeout"))
}

func TestSettingsService_Save_EnvironmentKeysStayOutOfFile(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil, WithEnv(env(map[string]string{EnvOpenAIAPIKey: "sk-env"})))

	settings, err := service.Get()
	require.NoError(t, err)
	require.Equal(t, "sk-env", settings.LLM.APIKey)

	require.NoError(t, service.Save(settings))
	_, exists := store.Get("llm.api_key")
	assert.False(t, exists)
	_, exists = store.Get("embedding.api_key")
	assert.False(t, exists)

	settings.LLM.APIKey = "sk-typed"
	require.NoError(t, service.Save(settings))
	assert.Equal(t, "sk-typed", store.GetString("llm.api_key"))
}

func TestSettingsService_Save_Errors(t *testing.T) {
	keys := []struct {
		key   string
		label string
	}{
		{"embedding.provider", "embedding provider"},
		{"llm.model", "llm model"},
		{"chunking.overlap", "chunk overlap"},
		{"gateway.max_backoff", "gateway max_backoff"},
		{"session.idle_timeout", "session idle_timeout"},
		{"llm.api_key", "llm api_key"},
	}

	for _, k := range keys {
		t.Run(k.key, func(t *testing.T) {
			store := &failingConfigStore{ConfigStore: memory.NewConfigStore(), failOn: k.key}
			service := NewSettingsService(store, nil, WithEnv(noEnv))

			settings := domain.DefaultAppSettings()
			settings.LLM.APIKey = "sk-test"

			err := service.Save(&settings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), k.label)
			assert.ErrorIs(t, err, assert.AnError)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    domain.AIProvider
		model       string
		apiKey      string
		wantModel   string
		wantBaseURL string
		wantErr     string
	}{
		{"ollama default model", domain.AIProviderOllama, "", "", "nomic-embed-text", "http://localhost:11434", ""},
		{"openai explicit model", domain.AIProviderOpenAI, "text-embedding-3-large", "sk-test", "text-embedding-3-large", "", ""},
		{"openai needs key", domain.AIProviderOpenAI, "", "", "", "", "API key required"},
		{"anthropic has no embeddings", domain.AIProviderAnthropic, "", "sk-ant", "", "", "does not support embeddings"},
		{"invalid provider", domain.AIProvider("nope"), "", "", "", "", "invalid embedding provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil, WithEnv(noEnv))

			err := service.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			settings, _ := service.Get()
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, tt.wantModel, settings.Embedding.Model)
			assert.Equal(t, tt.wantBaseURL, settings.Embedding.BaseURL)
			assert.Equal(t, tt.apiKey, settings.Embedding.APIKey)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider_KeyFromEnvironment(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil, WithEnv(env(map[string]string{EnvOpenAIAPIKey: "sk-env"})))

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))
	_, exists := store.Get("embedding.api_key")
	assert.False(t, exists)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  domain.AIProvider
		model     string
		apiKey    string
		wantModel string
		wantErr   bool
	}{
		{"ollama", domain.AIProviderOllama, "", "", "llama3.2", false},
		{"openai", domain.AIProviderOpenAI, "gpt-4o", "sk-test", "gpt-4o", false},
		{"anthropic default model", domain.AIProviderAnthropic, "", "sk-ant", "claude-3-5-sonnet-latest", false},
		{"anthropic needs key", domain.AIProviderAnthropic, "", "", "", true},
		{"invalid", domain.AIProvider("nope"), "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil, WithEnv(noEnv))

			err := service.SetLLMProvider(tt.provider, tt.model, tt.apiKey)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			settings, _ := service.Get()
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
		})
	}
}

func TestSettingsService_SetLLMProvider_PreservesExistingBaseURL(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"llm.base_url": "http://gpu-box:11434"})
	service := NewSettingsService(store, nil, WithEnv(noEnv))

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "mistral", ""))

	settings, _ := service.Get()
	assert.Equal(t, "http://gpu-box:11434", settings.LLM.BaseURL)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", "sk-test"))
	settings, _ = service.Get()
	assert.Empty(t, settings.LLM.BaseURL, "cloud providers clear the base URL")
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		stored  map[string]any
		wantErr string
	}{
		{"configured", map[string]any{"llm.api_key": "sk"}, ""},
		{"ollama needs no key", map[string]any{"llm.provider": "ollama"}, ""},
		{"llm unconfigured", map[string]any{}, "not configured"},
		{"overlap too large", map[string]any{"llm.api_key": "sk", "chunking.size": int64(100), "chunking.overlap": int64(100)}, "overlap"},
		{"min similarity out of range", map[string]any{"llm.api_key": "sk", "retrieval.min_similarity": 1.5}, "min_similarity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(tt.stored), nil, WithEnv(noEnv))

			err := service.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateConfigs(t *testing.T) {
	errEmbed := errors.New("embed unreachable")
	errLLM := errors.New("llm unreachable")

	t.Run("nil validator", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.ValidateEmbeddingConfig())
		assert.NoError(t, service.ValidateLLMConfig())
	})

	t.Run("success", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), &mockAIConfigValidator{})
		assert.NoError(t, service.ValidateEmbeddingConfig())
		assert.NoError(t, service.ValidateLLMConfig())
	})

	t.Run("errors pass through", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(),
			&mockAIConfigValidator{embedErr: errEmbed, llmErr: errLLM})
		assert.ErrorIs(t, service.ValidateEmbeddingConfig(), errEmbed)
		assert.ErrorIs(t, service.ValidateLLMConfig(), errLLM)
	})
}
