package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the default generation model for new sessions.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is used when the caller supplies none.
	Temperature float64

	// MaxTokens caps the reply length. Zero leaves it to the provider.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls how normalised text is split.
type ChunkingSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters repeated between consecutive chunks.
	Overlap int
}

// RetrievalSettings controls the retrieval planner.
type RetrievalSettings struct {
	// K is the maximum number of citations per query.
	K int

	// MinSimilarity is the cosine similarity a hit must reach to be cited.
	MinSimilarity float64
}

// GatewaySettings controls batching, retry and throttling of embedding calls.
type GatewaySettings struct {
	// BatchSize caps texts per provider request.
	BatchSize int

	// MaxAttempts is the total number of tries per batch.
	MaxAttempts int

	// InitialBackoff is the first retry delay; it doubles per attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the retry delay.
	MaxBackoff time.Duration

	// RequestsPerSecond throttles provider calls. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int
}

// ImageMode selects how text is extracted from images.
type ImageMode string

// Available image modes.
const (
	// ImageModeOCR runs optical character recognition.
	ImageModeOCR ImageMode = "ocr"

	// ImageModeVision asks a vision-capable model to describe the image.
	ImageModeVision ImageMode = "vision"
)

// IsValid returns true if the image mode is recognised.
func (m ImageMode) IsValid() bool {
	return m == ImageModeOCR || m == ImageModeVision
}

// IngestSettings controls document ingestion.
type IngestSettings struct {
	// Concurrency bounds how many documents are prepared at once.
	Concurrency int

	// ImageMode selects OCR or vision description for images.
	ImageMode ImageMode

	// VisionModel is the model used in vision mode.
	VisionModel string
}

// SessionSettings controls session lifecycle.
type SessionSettings struct {
	// IdleTimeout evicts sessions unused for this long. Zero disables expiry.
	IdleTimeout time.Duration
}

// LogSettings controls the log file.
type LogSettings struct {
	// File is a path for rotated JSON logs. Empty disables file logging.
	File string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Chunking holds chunker settings.
	Chunking ChunkingSettings

	// Retrieval holds planner settings.
	Retrieval RetrievalSettings

	// Gateway holds embedding gateway settings.
	Gateway GatewaySettings

	// Ingest holds ingestion settings.
	Ingest IngestSettings

	// Session holds session lifecycle settings.
	Session SessionSettings

	// Log holds logging settings.
	Log LogSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: RetrievalSettings{
			K:             4,
			MinSimilarity: 0.2,
		},
		Gateway: GatewaySettings{
			BatchSize:         96,
			MaxAttempts:       4,
			InitialBackoff:    500 * time.Millisecond,
			MaxBackoff:        8 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Ingest: IngestSettings{
			Concurrency: 4,
			ImageMode:   ImageModeOCR,
			VisionModel: "gpt-4o-mini",
		},
		Session: SessionSettings{
			IdleTimeout: 2 * time.Hour,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
