package driven

import (
	"context"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// Normaliser extracts ordered text segments from one family of formats.
type Normaliser interface {
	// Formats returns the format tags this normaliser handles.
	Formats() []domain.FormatTag

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise extracts text segments in source order.
	// Returns domain.ErrCorruptInput when no text can be extracted.
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Segment, error)
}
