package domain

// RawDocument represents uploaded bytes before normalisation.
type RawDocument struct {
	// Filename is the upload name, e.g. "report.pdf".
	Filename string

	// Format is the format tag supplied by the caller or detected from Filename.
	Format FormatTag

	// Content is the raw bytes.
	Content []byte
}

// UploadedFile is one file in an ingestion batch.
type UploadedFile struct {
	// Filename is the upload name.
	Filename string

	// Format is optional; when empty it is detected from Filename.
	Format FormatTag

	// Content is the file body.
	Content []byte
}

// IngestFailure reports one document that could not be ingested.
type IngestFailure struct {
	// Filename is the upload name.
	Filename string

	// Err is the cause, matching one of the ingestion sentinels where possible.
	Err error
}

// IngestReport summarises an ingestion batch.
// Successful documents are listed in upload order.
type IngestReport struct {
	// Documents are the documents that were indexed.
	Documents []Document

	// Failures are the documents that were skipped.
	Failures []IngestFailure

	// Warnings are non-fatal conditions such as empty documents.
	Warnings []IngestFailure

	// ChunksIndexed is the total number of chunks upserted.
	ChunksIndexed int
}

// HasFailures reports whether any document failed.
func (r *IngestReport) HasFailures() bool {
	return len(r.Failures) > 0
}
