package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion Errors.

	// ErrUnsupportedFormat indicates no normaliser handles the format tag.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptInput indicates a parser could not extract text from the file,
	// for example an encrypted or garbled document.
	ErrCorruptInput = errors.New("corrupt input")

	// ErrEmptyDocument indicates a document produced no text.
	// It is a warning: the rest of the upload continues.
	ErrEmptyDocument = errors.New("empty document")

	// Provider Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider could not serve
	// the request, either because retries were exhausted or the failure was permanent.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates a vector does not match the dimension
	// already established for a session's index. Reset the session to change models.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrProviderError indicates a generation or embedding provider call failed.
	ErrProviderError = errors.New("provider error")

	// ErrLLMUnavailable indicates no generation provider is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrUnknownModel indicates a model identifier outside the catalogue.
	ErrUnknownModel = errors.New("unknown model")

	// Conversation Errors.

	// ErrInvalidTurnReference indicates Edit or Retry targeted a turn that does
	// not exist or has the wrong role.
	ErrInvalidTurnReference = errors.New("invalid turn reference")

	// ErrStaleResponse indicates a generation reply arrived after the transcript
	// moved on. The reply is discarded.
	ErrStaleResponse = errors.New("stale response")

	// ErrSessionNotFound indicates the session id is not registered.
	ErrSessionNotFound = errors.New("session not found")
)

// ProviderError describes a failed call to an external model provider.
// It matches ErrProviderError with errors.Is.
type ProviderError struct {
	// Provider names the backend, e.g. "openai".
	Provider string

	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int

	// Message is the provider's error text.
	Message string

	// Retryable reports whether repeating the identical request may succeed
	// (timeouts, rate limits, 5xx).
	Retryable bool

	// RetryAfter is the provider's requested pause, if it sent one.
	RetryAfter time.Duration
}

// Error implements error.
func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Is reports whether target is ErrProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderError
}

// NewProviderError builds a ProviderError, classifying the status code.
// Status 0 (transport failure), 408, 429 and 5xx are retryable.
func NewProviderError(provider string, statusCode int, message string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Retryable:  statusCode == 0 || statusCode == 408 || statusCode == 429 || statusCode >= 500,
	}
}

// IsRetryable reports whether err wraps a retryable ProviderError.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
