// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/providerhttp"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService     = (*LLMService)(nil)
	_ driven.ImageDescriber = (*LLMService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL     = "http://localhost:11434"
	DefaultLLMModel    = "llama3.2"
	DefaultVisionModel = "llava"
	DefaultLLMTimeout  = 120 * time.Second
)

const providerName = "ollama"

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the default model (default: llama3.2).
	Model string

	// VisionModel describes images (default: llava).
	VisionModel string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	client      *http.Client
	baseURL     string
	model       string
	visionModel string
}

// options holds generation parameters. Temperature is always sent.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = DefaultVisionModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
	}
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	chatMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	model := opts.Model
	if model == "" {
		model = s.model
	}
	return s.chat(ctx, chatRequest{
		Model:    model,
		Messages: chatMessages,
		Options:  options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature},
	})
}

// DescribeImage asks the local vision model about the image.
func (s *LLMService) DescribeImage(ctx context.Context, _ string, data []byte, prompt string) (string, error) {
	return s.chat(ctx, chatRequest{
		Model: s.visionModel,
		Messages: []chatMessage{{
			Role:    driven.ChatRoleUser,
			Content: prompt,
			Images:  []string{base64.StdEncoding.EncodeToString(data)},
		}},
	})
}

func (s *LLMService) chat(ctx context.Context, reqBody chatRequest) (string, error) {
	reqBody.Stream = false

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/chat",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var chatResp chatResponse
	if err := providerhttp.DoJSON(s.client, providerName, req, &chatResp); err != nil {
		return "", err
	}

	return chatResp.Message.Content, nil
}

// ModelName returns the default model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return providerhttp.Ping(ctx, s.client, providerName, s.baseURL+"/api/tags", nil)
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
