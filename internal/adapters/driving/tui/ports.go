// Package tui provides an interactive terminal chat interface for docsassistant.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversation answers questions and manages the transcript.
	Conversation driving.ConversationService

	// Ingest normalises, chunks and indexes uploaded files.
	Ingest driving.IngestService

	// Session reports statistics and resets session state.
	Session driving.SessionService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Conversation == nil {
		return ErrMissingConversationService
	}
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Session == nil {
		return ErrMissingSessionService
	}
	return nil
}
