// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// docs assistant. It lets AI assistants hold grounded conversations over
// uploaded documents.
package mcp

import "errors"

var (
	// ErrMissingConversationService is returned when the conversation service is not provided.
	ErrMissingConversationService = errors.New("mcp: conversation service is required")

	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("mcp: ingest service is required")

	// ErrMissingSessionService is returned when the session service is not provided.
	ErrMissingSessionService = errors.New("mcp: session service is required")
)
