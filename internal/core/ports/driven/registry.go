package driven

import (
	"context"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// It dispatches on the document's format tag, preferring higher priority.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	// Returns domain.ErrUnsupportedFormat when no normaliser handles the tag.
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Segment, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedFormats returns every format tag with a registered normaliser.
	SupportedFormats() []domain.FormatTag
}
