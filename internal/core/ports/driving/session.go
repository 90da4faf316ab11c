package driving

import (
	"context"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// SessionService manages session lifecycle.
type SessionService interface {
	// Open returns the session, creating it on first use.
	// An empty id creates a session with a fresh id.
	Open(ctx context.Context, sessionID string) (domain.SessionStats, error)

	// Stats returns a snapshot of an existing session.
	Stats(ctx context.Context, sessionID string) (domain.SessionStats, error)

	// Documents lists the session's documents in upload order.
	Documents(ctx context.Context, sessionID string) ([]domain.Document, error)

	// Reset drops the session's index and transcript but keeps the id.
	Reset(ctx context.Context, sessionID string) error

	// ClearDocuments drops the index and documents but keeps the transcript.
	ClearDocuments(ctx context.Context, sessionID string) error

	// Evict tears the session down completely.
	Evict(ctx context.Context, sessionID string) error

	// List returns snapshots of every live session.
	List(ctx context.Context) []domain.SessionStats
}
