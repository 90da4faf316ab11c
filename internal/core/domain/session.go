package domain

import "time"

// StorageMemoryOnly is the only storage type: sessions live in process memory.
const StorageMemoryOnly = "memory_only"

// SessionStats is a snapshot of one session.
type SessionStats struct {
	// SessionID is the opaque session identifier.
	SessionID string `json:"session_id"`

	// Model is the active generation model.
	Model string `json:"model"`

	// DocumentsProcessed counts documents currently indexed.
	DocumentsProcessed int `json:"documents_processed"`

	// VectorStoreSize counts index entries.
	VectorStoreSize int `json:"vectorstore_size"`

	// Dimension is the established embedding dimension, 0 before the first upsert.
	Dimension int `json:"dimension"`

	// TranscriptLength counts live turns.
	TranscriptLength int `json:"transcript_length"`

	// StorageType is always StorageMemoryOnly.
	StorageType string `json:"storage_type"`

	// CreatedAt is when the session was created or last reset.
	CreatedAt time.Time `json:"created_at"`

	// LastActive is the time of the last operation.
	LastActive time.Time `json:"last_active"`
}

// ChatMode reports whether the session answers without documents.
func (s SessionStats) ChatMode() bool {
	return s.VectorStoreSize == 0
}
