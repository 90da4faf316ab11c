package domain

import "time"

// Role is the author of a turn.
type Role string

const (
	// RoleUser marks turns typed by the user.
	RoleUser Role = "user"

	// RoleAssistant marks turns produced by the generation model.
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a session transcript.
type Turn struct {
	// ID identifies this version of the turn. An edited turn gets a new ID.
	ID string `json:"id"`

	// Seq is the position in the transcript, contiguous from zero.
	Seq int `json:"seq"`

	// Role is user or assistant.
	Role Role `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Citations are the evidence attached to an assistant answer.
	Citations []Citation `json:"citations,omitempty"`

	// Mode records whether the answer was grounded in documents.
	Mode RetrievalMode `json:"mode,omitempty"`

	// LowRelevance is set when documents were searched but nothing cleared the threshold.
	LowRelevance bool `json:"low_relevance,omitempty"`

	// Model is the generation model that produced an assistant turn.
	Model string `json:"model,omitempty"`

	// Failed marks an assistant turn whose generation failed.
	Failed bool `json:"failed,omitempty"`

	// Error holds the failure text for a failed turn.
	Error string `json:"error,omitempty"`

	// Timestamp is when the turn was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// IsAnswered reports whether the turn is an assistant turn that succeeded.
func (t Turn) IsAnswered() bool {
	return t.Role == RoleAssistant && !t.Failed
}

// AssistantReply is the outcome of a generation call, ready to commit.
type AssistantReply struct {
	// Content is the generated text. Empty for failures.
	Content string

	// Model is the model that was asked.
	Model string

	// Evidence is the evidence the answer was conditioned on.
	Evidence *EvidenceSet

	// Err is set when generation failed; the turn is recorded as failed.
	Err error
}
