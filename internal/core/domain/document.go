package domain

import (
	"strconv"
	"strings"
	"time"
)

// Document represents an uploaded file after ingestion.
// It is owned by exactly one session and dropped with it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// SessionID is the session that uploaded the document.
	SessionID string `json:"session_id"`

	// Filename is the original upload name, used for citations.
	Filename string `json:"filename"`

	// Format is the format tag the document was normalised as.
	Format FormatTag `json:"format"`

	// ByteLength is the size of the uploaded bytes.
	ByteLength int `json:"byte_length"`

	// Title is the human-readable title, derived from content or filename.
	Title string `json:"title"`

	// ChunkCount is the number of chunks indexed for the document.
	ChunkCount int `json:"chunk_count"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`
}

// Locator records where a piece of text came from inside its document.
// Zero fields mean the dimension does not apply to the format.
type Locator struct {
	// Source is the filename of the owning document.
	Source string `json:"source"`

	// Page is the 1-based page (PDF, OCR frames).
	Page int `json:"page,omitempty"`

	// Sheet is the worksheet name (spreadsheets).
	Sheet string `json:"sheet,omitempty"`

	// Slide is the 1-based slide number (presentations).
	Slide int `json:"slide,omitempty"`

	// Row is the 1-based row (CSV and spreadsheets).
	Row int `json:"row,omitempty"`

	// Section is a heading or element path (markdown, XML, structured data).
	Section string `json:"section,omitempty"`
}

// String renders the locator for display next to a citation.
func (l Locator) String() string {
	parts := []string{}
	if l.Source != "" {
		parts = append(parts, l.Source)
	}
	if l.Page > 0 {
		parts = append(parts, "page "+strconv.Itoa(l.Page))
	}
	if l.Sheet != "" {
		parts = append(parts, "sheet "+l.Sheet)
	}
	if l.Slide > 0 {
		parts = append(parts, "slide "+strconv.Itoa(l.Slide))
	}
	if l.Row > 0 {
		parts = append(parts, "row "+strconv.Itoa(l.Row))
	}
	if l.Section != "" {
		parts = append(parts, l.Section)
	}
	return strings.Join(parts, ", ")
}

// Segment is a run of normalised text in source order.
// Normalisers emit segments; the chunker consumes them.
type Segment struct {
	// Text is the extracted plain text. It may be empty for unreadable pages.
	Text string

	// Locator is the structural position of the text.
	Locator Locator
}

// Chunk is a bounded span of a document's normalised text.
// Chunks are immutable once created.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the ordinal position within the document.
	Position int

	// Content is the text content of this chunk.
	Content string

	// Locator is inherited from the first segment contributing to the chunk.
	Locator Locator

	// Start and End are rune offsets of the chunk in the normalised text,
	// half-open [Start, End).
	Start int
	End   int
}

// Length returns the chunk length in runes.
func (c Chunk) Length() int {
	return c.End - c.Start
}

// Embedding pairs a chunk with its vector.
type Embedding struct {
	// ChunkID identifies the embedded chunk.
	ChunkID string

	// Vector has the dimension fixed by the embedding model.
	Vector []float32
}

// IndexEntry is what a vector index stores for one chunk.
type IndexEntry struct {
	// ChunkID identifies the chunk.
	ChunkID string

	// DocumentID identifies the chunk's document.
	DocumentID string

	// Vector is the chunk embedding.
	Vector []float32

	// Locator is the chunk's structural position.
	Locator Locator
}
