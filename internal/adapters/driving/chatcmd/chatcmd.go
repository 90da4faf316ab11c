// Package chatcmd parses the slash commands shared by the line REPL and the
// TUI chat view.
package chatcmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a parsed chat line.
type Kind int

const (
	// KindMessage is a plain question.
	KindMessage Kind = iota
	// KindEdit rewrites an earlier user turn.
	KindEdit
	// KindRetry regenerates the last answer.
	KindRetry
	// KindModel switches the active model.
	KindModel
	// KindUpload ingests files into the session.
	KindUpload
	// KindReset starts the session over.
	KindReset
	// KindClear drops documents but keeps the conversation.
	KindClear
	// KindStats shows session statistics.
	KindStats
	// KindDocuments lists the session's documents.
	KindDocuments
	// KindModels lists the model catalogue.
	KindModels
	// KindHistory prints the transcript.
	KindHistory
	// KindHelp prints the command list.
	KindHelp
	// KindQuit ends the chat.
	KindQuit
)

// Errors returned by Parse.
var (
	// ErrUnknownCommand is returned for an unrecognised slash command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage is returned when a command's arguments are malformed.
	ErrUsage = errors.New("usage")
)

// Command is one parsed chat line.
type Command struct {
	Kind Kind

	// Text is the message, or the replacement text for an edit.
	Text string

	// Index is the zero-based transcript position an edit targets.
	Index int

	// Model is the switch target or retry override.
	Model string

	// Paths are the files to upload.
	Paths []string
}

// Parse interprets one input line. Lines not starting with "/" are messages.
// Edit positions are entered one-based, as they are displayed.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Command{Kind: KindMessage, Text: line}, nil
	}

	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "edit":
		return parseEdit(rest)
	case "retry":
		return Command{Kind: KindRetry, Model: rest}, nil
	case "model":
		if rest == "" {
			return Command{}, fmt.Errorf("%w: /model <name>", ErrUsage)
		}
		return Command{Kind: KindModel, Model: rest}, nil
	case "upload":
		paths := strings.Fields(rest)
		if len(paths) == 0 {
			return Command{}, fmt.Errorf("%w: /upload <file>...", ErrUsage)
		}
		return Command{Kind: KindUpload, Paths: paths}, nil
	case "reset":
		return Command{Kind: KindReset}, nil
	case "clear":
		return Command{Kind: KindClear}, nil
	case "stats":
		return Command{Kind: KindStats}, nil
	case "docs", "documents":
		return Command{Kind: KindDocuments}, nil
	case "models":
		return Command{Kind: KindModels}, nil
	case "history":
		return Command{Kind: KindHistory}, nil
	case "help", "?":
		return Command{Kind: KindHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: KindQuit}, nil
	default:
		return Command{}, fmt.Errorf("%w: /%s", ErrUnknownCommand, name)
	}
}

func parseEdit(rest string) (Command, error) {
	num, text, _ := strings.Cut(rest, " ")
	n, err := strconv.Atoi(num)
	text = strings.TrimSpace(text)
	if err != nil || n < 1 || text == "" {
		return Command{}, fmt.Errorf("%w: /edit <turn number> <new text>", ErrUsage)
	}
	return Command{Kind: KindEdit, Index: n - 1, Text: text}, nil
}

// Help returns the command reference.
func Help() string {
	return `Commands:
  /edit N text    Replace your message number N and regenerate from there
  /retry [model]  Regenerate the last answer, optionally with another model
  /model NAME     Switch the model for the rest of the conversation
  /upload FILE... Add documents to this session
  /docs           List uploaded documents
  /clear          Remove all documents, keep the conversation
  /reset          Start over with no documents and no history
  /history        Show the conversation so far
  /models         List available models
  /stats          Show session statistics
  /quit           Leave the chat`
}
