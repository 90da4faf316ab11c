package driven

import "github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"

// AIConfigValidator checks provider settings before they are saved,
// by building a client and pinging the provider.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Unconfigured settings are not an error.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Unconfigured settings are not an error.
	ValidateLLM(config *domain.LLMSettings) error
}
