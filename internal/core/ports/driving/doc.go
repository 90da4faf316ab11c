// Package driving defines interfaces that external actors (CLI, TUI, HTTP, MCP)
// use to interact with core services. These are the "driving" ports in
// hexagonal architecture terminology - they drive the application.
//
// Every operation is scoped to a session id. Sessions never observe each
// other's documents or transcripts.
//
// Implementations of these interfaces live in internal/core/services.
package driving
