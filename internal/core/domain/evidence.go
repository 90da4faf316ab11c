package domain

// RetrievalMode says how a turn was answered.
type RetrievalMode string

const (
	// ModeChat answers from conversation history alone.
	ModeChat RetrievalMode = "chat"

	// ModeDocument answers with document retrieval.
	ModeDocument RetrievalMode = "document"
)

// Citation is one piece of retrieved evidence.
type Citation struct {
	// ChunkID identifies the retrieved chunk.
	ChunkID string `json:"chunk_id"`

	// DocumentID identifies the chunk's document.
	DocumentID string `json:"document_id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Locator carries the source filename and position.
	Locator Locator `json:"locator"`

	// Similarity is the cosine similarity to the query.
	Similarity float64 `json:"similarity"`
}

// EvidenceSet is the ranked evidence for one query.
type EvidenceSet struct {
	// Query is the text that was searched.
	Query string `json:"query"`

	// Mode is chat when the session has no documents.
	Mode RetrievalMode `json:"mode"`

	// Citations are ordered by similarity, highest first.
	Citations []Citation `json:"citations,omitempty"`

	// LowRelevance is set when documents exist but none cleared the threshold.
	LowRelevance bool `json:"low_relevance,omitempty"`
}

// IsEmpty reports whether the set carries no citations.
func (e *EvidenceSet) IsEmpty() bool {
	return e == nil || len(e.Citations) == 0
}

// ChatEvidence returns the evidence set for a chat-mode turn.
func ChatEvidence(query string) *EvidenceSet {
	return &EvidenceSet{Query: query, Mode: ModeChat}
}
