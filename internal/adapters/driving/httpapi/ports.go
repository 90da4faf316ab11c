// Package httpapi exposes the conversation engine as a JSON HTTP API.
package httpapi

import (
	"errors"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// Errors returned by Ports.Validate.
var (
	// ErrMissingConversationService is returned when the conversation service is not provided.
	ErrMissingConversationService = errors.New("httpapi: conversation service is required")

	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("httpapi: ingest service is required")

	// ErrMissingSessionService is returned when the session service is not provided.
	ErrMissingSessionService = errors.New("httpapi: session service is required")
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Conversation asks, edits and retries.
	Conversation driving.ConversationService

	// Ingest adds uploaded documents to a session.
	Ingest driving.IngestService

	// Session manages session lifecycle.
	Session driving.SessionService
}

// Validate ensures all required ports are set.
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
