// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewDocuments lists the session's documents.
	ViewDocuments
	// ViewModels is the model picker.
	ViewModels
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewModels:
		return "models"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// AnswerReceived carries the outcome of an ask, edit or retry.
type AnswerReceived struct {
	Turn *domain.Turn
	Err  error
}

// TranscriptLoaded carries the session transcript.
type TranscriptLoaded struct {
	Turns []domain.Turn
	Err   error
}

// FilesIngested carries the outcome of an upload or a watched-directory batch.
type FilesIngested struct {
	Report *domain.IngestReport
	Err    error
}

// StatsLoaded carries session statistics.
type StatsLoaded struct {
	Stats domain.SessionStats
	Err   error
}

// DocumentsLoaded carries the session's documents.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// ModelSwitched signals the session model changed.
type ModelSwitched struct {
	Model string
	Err   error
}

// SessionReset signals the session was reset, or only its documents cleared.
type SessionReset struct {
	DocumentsOnly bool
	Err           error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
