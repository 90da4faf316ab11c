package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptChatSystem is the system prompt for chat mode. No placeholders.
	PromptChatSystem = "chat_system"

	// PromptDocumentSystem is the system prompt for document Q&A mode.
	// The template expects one %s placeholder for the formatted evidence.
	PromptDocumentSystem = "document_system"

	// PromptLowRelevance is appended to the system prompt when documents were
	// searched but nothing relevant was found. No placeholders.
	PromptLowRelevance = "low_relevance"

	// PromptImageDescription asks a vision model to describe an uploaded image.
	PromptImageDescription = "image_description"
)
