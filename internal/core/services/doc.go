// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The engine is built from five services:
//
//   - EmbeddingGateway: batches, retries and throttles embedding calls
//   - RetrievalPlanner: picks chat or document mode and gathers citations
//   - SessionRegistry: owns per-session index, documents and transcript
//   - IngestService: normalise, chunk, embed and index uploaded files
//   - ConversationService: ask, edit, retry and switch model
//
// Services reach infrastructure only through driven ports.
package services
