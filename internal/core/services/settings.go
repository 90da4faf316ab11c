package services

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMTemperature    = "llm.temperature"
	keyLLMMaxTokens      = "llm.max_tokens"
	keyChunkSize         = "chunking.size"
	keyChunkOverlap      = "chunking.overlap"
	keyRetrievalK        = "retrieval.k"
	keyMinSimilarity     = "retrieval.min_similarity"
	keyGatewayBatch      = "gateway.batch_size"
	keyGatewayAttempts   = "gateway.max_attempts"
	keyGatewayBackoff    = "gateway.initial_backoff"
	keyGatewayMaxBackoff = "gateway.max_backoff"
	keyGatewayRPS        = "gateway.requests_per_second"
	keyGatewayBurst      = "gateway.burst"
	keyIngestConcurrency = "ingest.concurrency"
	keyIngestImageMode   = "ingest.image_mode"
	keyIngestVision      = "ingest.vision_model"
	keySessionIdle       = "session.idle_timeout"
	keyLogFile           = "log.file"
)

// Environment variables that supply API keys missing from the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// defaultOllamaURL is used for local providers without a configured base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv sets the environment lookup used for API keys.
func WithEnv(getenv func(string) string) SettingsOption {
	return func(s *SettingsService) {
		if getenv != nil {
			s.getenv = getenv
		}
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(
	configStore driven.ConfigStore, aiValidator driven.AIConfigValidator, opts ...SettingsOption,
) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults; missing API keys are
// taken from the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			K:             s.getInt(keyRetrievalK, defaults.Retrieval.K),
			MinSimilarity: s.getFloat(keyMinSimilarity, defaults.Retrieval.MinSimilarity),
		},
		Gateway: domain.GatewaySettings{
			BatchSize:         s.getInt(keyGatewayBatch, defaults.Gateway.BatchSize),
			MaxAttempts:       s.getInt(keyGatewayAttempts, defaults.Gateway.MaxAttempts),
			InitialBackoff:    s.getDuration(keyGatewayBackoff, defaults.Gateway.InitialBackoff),
			MaxBackoff:        s.getDuration(keyGatewayMaxBackoff, defaults.Gateway.MaxBackoff),
			RequestsPerSecond: s.getFloat(keyGatewayRPS, defaults.Gateway.RequestsPerSecond),
			Burst:             s.getInt(keyGatewayBurst, defaults.Gateway.Burst),
		},
		Ingest: domain.IngestSettings{
			Concurrency: s.getInt(keyIngestConcurrency, defaults.Ingest.Concurrency),
			ImageMode:   s.getImageMode(defaults.Ingest.ImageMode),
			VisionModel: s.getString(keyIngestVision, defaults.Ingest.VisionModel),
		},
		Session: domain.SessionSettings{
			IdleTimeout: s.getDuration(keySessionIdle, defaults.Session.IdleTimeout),
		},
		Log: domain.LogSettings{
			File: s.configStore.GetString(keyLogFile),
		},
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}

	return settings, nil
}

// setting is one config key and the value to persist under it.
type setting struct {
	key   string
	label string
	value any
}

// Save persists application settings.
// API keys that only came from the environment are not written to the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{keyEmbedProvider, "embedding provider", settings.Embedding.Provider.String()},
		{keyEmbedModel, "embedding model", settings.Embedding.Model},
		{keyEmbedBaseURL, "embedding base_url", settings.Embedding.BaseURL},
		{keyLLMProvider, "llm provider", settings.LLM.Provider.String()},
		{keyLLMModel, "llm model", settings.LLM.Model},
		{keyLLMBaseURL, "llm base_url", settings.LLM.BaseURL},
		{keyLLMTemperature, "llm temperature", settings.LLM.Temperature},
		{keyLLMMaxTokens, "llm max_tokens", settings.LLM.MaxTokens},
		{keyChunkSize, "chunk size", settings.Chunking.Size},
		{keyChunkOverlap, "chunk overlap", settings.Chunking.Overlap},
		{keyRetrievalK, "retrieval k", settings.Retrieval.K},
		{keyMinSimilarity, "retrieval min_similarity", settings.Retrieval.MinSimilarity},
		{keyGatewayBatch, "gateway batch_size", settings.Gateway.BatchSize},
		{keyGatewayAttempts, "gateway max_attempts", settings.Gateway.MaxAttempts},
		{keyGatewayBackoff, "gateway initial_backoff", settings.Gateway.InitialBackoff.String()},
		{keyGatewayMaxBackoff, "gateway max_backoff", settings.Gateway.MaxBackoff.String()},
		{keyGatewayRPS, "gateway requests_per_second", settings.Gateway.RequestsPerSecond},
		{keyGatewayBurst, "gateway burst", settings.Gateway.Burst},
		{keyIngestConcurrency, "ingest concurrency", settings.Ingest.Concurrency},
		{keyIngestImageMode, "ingest image_mode", string(settings.Ingest.ImageMode)},
		{keyIngestVision, "ingest vision_model", settings.Ingest.VisionModel},
		{keySessionIdle, "session idle_timeout", settings.Session.IdleTimeout.String()},
		{keyLogFile, "log file", settings.Log.File},
	}
	if s.shouldPersistKey(keyEmbedAPIKey, settings.Embedding.Provider, settings.Embedding.APIKey) {
		values = append(values, setting{keyEmbedAPIKey, "embedding api_key", settings.Embedding.APIKey})
	}
	if s.shouldPersistKey(keyLLMAPIKey, settings.LLM.Provider, settings.LLM.APIKey) {
		values = append(values, setting{keyLLMAPIKey, "llm api_key", settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.label, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider], settings.Embedding.Model)
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider], settings.LLM.Model)
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the settings can run the engine.
// Generation must be configured; embeddings are optional because chat
// mode works without documents.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if settings.Chunking.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", settings.Chunking.Size)
	}
	if settings.Chunking.Overlap < 0 || settings.Chunking.Overlap >= settings.Chunking.Size {
		return fmt.Errorf("chunk overlap %d must be between 0 and chunk size %d",
			settings.Chunking.Overlap, settings.Chunking.Size)
	}
	if settings.Retrieval.K <= 0 {
		return fmt.Errorf("retrieval k must be positive, got %d", settings.Retrieval.K)
	}
	if settings.Retrieval.MinSimilarity < -1 || settings.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("retrieval min_similarity %.2f is outside [-1, 1]", settings.Retrieval.MinSimilarity)
	}
	if !settings.Ingest.ImageMode.IsValid() {
		return fmt.Errorf("invalid image mode: %s", settings.Ingest.ImageMode)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat treats a stored zero as a real value, since 0 is a valid temperature.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getImageMode(defaultVal domain.ImageMode) domain.ImageMode {
	mode := domain.ImageMode(s.configStore.GetString(keyIngestImageMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

// envAPIKey returns the environment API key for provider.
func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	default:
		return ""
	}
}

// shouldPersistKey reports whether apiKey belongs in the config file.
func (s *SettingsService) shouldPersistKey(key string, provider domain.AIProvider, apiKey string) bool {
	if apiKey == "" {
		return false
	}
	fromEnv := apiKey == s.envAPIKey(provider)
	return !fromEnv || s.configStore.GetString(key) != ""
}

// modelOrDefault picks the requested model, then the provider default, then the current one.
func modelOrDefault(requested, providerDefault, current string) string {
	switch {
	case requested != "":
		return requested
	case providerDefault != "":
		return providerDefault
	default:
		return current
	}
}

// baseURLFor keeps or defaults the base URL for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
