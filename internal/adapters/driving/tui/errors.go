package tui

import "errors"

// ErrMissingConversationService is returned when the conversation service is not provided.
var ErrMissingConversationService = errors.New("tui: conversation service is required")

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("tui: ingest service is required")

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("tui: session service is required")

// ErrMissingSessionID is returned when no session is given.
var ErrMissingSessionID = errors.New("tui: session id is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
