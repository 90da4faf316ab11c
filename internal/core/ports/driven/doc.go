// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - NormaliserRegistry: Turns uploaded bytes into ordered text segments
//   - Chunker: Splits segments into overlapping chunks
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndexFactory: Creates one VectorIndex per session
//   - DocumentStoreFactory: Creates one DocumentStore per session
//   - SessionCache: Holds live sessions with idle expiry
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - LLMService: Generation. Without it, every answer is recorded as a failed turn.
//   - ImageDescriber: Vision-model image descriptions. Without it, images use OCR.
//   - CommandRunner: External tools (pdftotext, tesseract). Without it, PDFs and images fail as corrupt.
//   - PromptStore: Customisable prompts. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
