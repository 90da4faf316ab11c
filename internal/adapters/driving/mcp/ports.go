package mcp

import (
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Conversation asks, edits and retries turns.
	Conversation driving.ConversationService

	// Ingest adds local files to a session.
	Ingest driving.IngestService

	// Session manages session lifecycle and statistics.
	Session driving.SessionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Conversation == nil {
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
