// Package openai provides an LLM service adapter using OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/providerhttp"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService     = (*LLMService)(nil)
	_ driven.ImageDescriber = (*LLMService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second

	// DefaultVisionMaxTokens caps image descriptions.
	DefaultVisionMaxTokens = 1000
)

const providerName = "openai"

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the default model (default: gpt-4o-mini).
	Model string

	// VisionModel describes images (default: Model).
	VisionModel string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using OpenAI API.
type LLMService struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	visionModel string
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
// Temperature is always sent so an explicit zero is honoured.
type chatCompletionRequest struct {
	Model               string              `json:"model"`
	Messages            []chatCompletionMsg `json:"messages"`
	MaxTokens           int                 `json:"max_tokens,omitempty"`
	MaxCompletionTokens int                 `json:"max_completion_tokens,omitempty"`
	Temperature         float64             `json:"temperature"`
}

// chatCompletionMsg is the OpenAI chat message format.
// Content is a string, or a list of parts for image input.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
	}, nil
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	chatMessages := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatCompletionMsg{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	model := opts.Model
	if model == "" {
		model = s.model
	}
	return s.complete(ctx, model, chatMessages, opts.MaxTokens, opts.Temperature)
}

// DescribeImage sends the image inline as a data URL to the vision model.
func (s *LLMService) DescribeImage(ctx context.Context, mimeType string, data []byte, prompt string) (string, error) {
	url := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	messages := []chatCompletionMsg{{
		Role: driven.ChatRoleUser,
		Content: []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: url}},
		},
	}}
	return s.complete(ctx, s.visionModel, messages, DefaultVisionMaxTokens,
		domain.EffectiveTemperature(s.visionModel, 0))
}

func (s *LLMService) complete(
	ctx context.Context,
	model string,
	messages []chatCompletionMsg,
	maxTokens int,
	temperature float64,
) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}

	// Reasoning models reject max_tokens.
	if maxTokens > 0 {
		if domain.IsReasoningModel(model) {
			reqBody.MaxCompletionTokens = maxTokens
		} else {
			reqBody.MaxTokens = maxTokens
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	var chatResp chatCompletionResponse
	if err := providerhttp.DoJSON(s.client, providerName, req, &chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", domain.NewProviderError(providerName, http.StatusOK, "no response choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ModelName returns the default model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return providerhttp.Ping(ctx, s.client, providerName, s.baseURL+"/models",
		http.Header{"Authorization": {"Bearer " + s.apiKey}})
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
