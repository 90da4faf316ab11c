package driving

import (
	"context"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// IngestService adds uploaded files to a session's index.
type IngestService interface {
	// Ingest normalises, chunks, embeds and indexes files.
	// One bad file never aborts the others; failures are listed in the report.
	// The error is reserved for session-level problems.
	Ingest(ctx context.Context, sessionID string, files []domain.UploadedFile) (*domain.IngestReport, error)

	// SupportedFormats lists the accepted format tags by group.
	SupportedFormats() []domain.FormatGroup
}
