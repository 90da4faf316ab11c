// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"
	"time"

	ollamaembed "github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/llm/ollama"
	openaillm "github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/llm/openai"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	ImageDescriber   driven.ImageDescriber // Nil unless image mode is vision.
	Warnings         []string              // Non-fatal issues that caused fallback.
}

// ChatOnly reports whether uploads are unavailable because no embedding
// service could be created.
func (r *InitResult) ChatOnly() bool {
	return r.EmbeddingService == nil
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise creates and validates every AI service the settings describe.
// Failures degrade to warnings: without embeddings the engine runs chat-only,
// without an LLM every answer is recorded as a failed turn, and without a
// vision model images fall back to OCR.
func Initialise(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}

	embedding, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.EmbeddingService = embedding

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.LLMService = llm

	if settings.Ingest.ImageMode == domain.ImageModeVision {
		describer, err := CreateImageDescriber(&settings.LLM, settings.Ingest.VisionModel)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("vision image mode unavailable, using OCR: %v", err))
		}
		result.ImageDescriber = describer
	}

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and pings it.
// Unconfigured settings return a nil service and no error.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	return probe(svc, err, domain.ErrEmbeddingUnavailable, "embedding")
}

// CreateAndValidateLLMService creates an LLM service and pings it.
// Unconfigured settings return a nil service and no error.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	return probe(svc, err, domain.ErrLLMUnavailable, "llm")
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings, ""), nil

	case domain.AIProviderOpenAI:
		svc, err := createOpenAILLM(settings, "")
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateImageDescriber creates a vision-capable client on the LLM provider.
// Anthropic is not wired for images; use openai or ollama.
func CreateImageDescriber(settings *domain.LLMSettings, visionModel string) (driven.ImageDescriber, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: no LLM provider configured", domain.ErrLLMUnavailable)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings, visionModel), nil

	case domain.AIProviderOpenAI:
		svc, err := createOpenAILLM(settings, visionModel)
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%s does not support image description, use ollama or openai", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) *ollamaembed.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings, visionModel string) *ollamallm.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		VisionModel: visionModel,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings, visionModel string) (*openaillm.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:      settings.APIKey,
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		VisionModel: visionModel,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
