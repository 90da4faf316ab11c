// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService generates conversational replies.
//
// The model is chosen per call through ChatOptions.Model, so one service
// serves every session whatever model each session has switched to.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-5, o-series)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation.
	// Provider failures should be returned as *domain.ProviderError.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the default model used when ChatOptions.Model is empty.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ImageDescriber asks a vision-capable model to describe an image.
type ImageDescriber interface {
	// DescribeImage returns a textual description of the image, including any
	// text visible in it.
	DescribeImage(ctx context.Context, mimeType string, data []byte, prompt string) (string, error)
}

// Chat message roles.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// Model selects the model for this call. Empty uses the service default.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature is sent as-is, including zero.
	Temperature float64
}
