package driving

import (
	"context"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// ConversationService drives a session's transcript.
type ConversationService interface {
	// Ask records a user turn and generates the answer.
	// A generation failure is returned as a failed assistant turn, not an error.
	Ask(ctx context.Context, sessionID, content string, opts GenerateOptions) (*domain.Turn, error)

	// Edit replaces the user turn at index, discards every later turn and
	// generates a fresh answer. Fails with domain.ErrInvalidTurnReference
	// when index is not a user turn.
	Edit(ctx context.Context, sessionID string, index int, content string, opts GenerateOptions) (*domain.Turn, error)

	// Retry replaces the trailing assistant turn with a regenerated one.
	// Fails with domain.ErrInvalidTurnReference when the last turn is not an assistant turn.
	Retry(ctx context.Context, sessionID string, opts GenerateOptions) (*domain.Turn, error)

	// SwitchModel changes the session's active model. The transcript and
	// index are untouched. Fails with domain.ErrUnknownModel.
	SwitchModel(ctx context.Context, sessionID, model string) error

	// Transcript returns the session's live turns.
	Transcript(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Models returns the models available for switching.
	Models() []domain.ModelInfo
}

// GenerateOptions tunes one generation.
type GenerateOptions struct {
	// Model, when set, switches the session's active model before generating.
	Model string

	// Temperature overrides the configured default when non-nil.
	Temperature *float64
}
