// Package domain defines the core business entities for the docs assistant.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded file owned by one session
//   - Segment: A run of normalised text with its structural locator
//   - Chunk: A bounded text unit embedded and retrieved as a whole
//   - IndexEntry: A chunk vector stored in a session's vector index
//   - Turn and Transcript: The mutable, replayable conversation log
//   - EvidenceSet: The citations retrieved for one query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
