package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/chatcmd"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// maxLineLength bounds a single REPL input line.
const maxLineLength = 1 << 20

// lockedWriter serialises writes from the REPL and the directory watcher.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// repl is the line-oriented chat used when stdin is not a terminal.
type repl struct {
	in        io.Reader
	out       *lockedWriter
	sessionID string
	prompt    bool
}

func newREPL(in io.Reader, out io.Writer, sessionID string, prompt bool) *repl {
	return &repl{
		in:        in,
		out:       &lockedWriter{w: out},
		sessionID: sessionID,
		prompt:    prompt,
	}
}

// Run reads lines until EOF, /quit or cancellation.
func (r *repl) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	r.showPrompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			r.showPrompt()
			continue
		}

		command, err := chatcmd.Parse(line)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			r.showPrompt()
			continue
		}

		quit, err := r.dispatch(ctx, command)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
		r.showPrompt()
	}

	return scanner.Err()
}

func (r *repl) showPrompt() {
	if r.prompt {
		fmt.Fprint(r.out, "> ")
	}
}

func (r *repl) dispatch(ctx context.Context, command chatcmd.Command) (bool, error) {
	switch command.Kind {
	case chatcmd.KindMessage:
		turn, err := conversationService.Ask(ctx, r.sessionID, command.Text, driving.GenerateOptions{})
		return false, r.answer(turn, err)

	case chatcmd.KindEdit:
		turn, err := conversationService.Edit(ctx, r.sessionID, command.Index, command.Text, driving.GenerateOptions{})
		return false, r.answer(turn, err)

	case chatcmd.KindRetry:
		turn, err := conversationService.Retry(ctx, r.sessionID, driving.GenerateOptions{Model: command.Model})
		return false, r.answer(turn, err)

	case chatcmd.KindModel:
		if err := conversationService.SwitchModel(ctx, r.sessionID, command.Model); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Model switched to %s.\n", command.Model)

	case chatcmd.KindUpload:
		return false, r.ingest(ctx, command.Paths)

	case chatcmd.KindReset:
		if err := sessionService.Reset(ctx, r.sessionID); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, "Session reset.")

	case chatcmd.KindClear:
		if err := sessionService.ClearDocuments(ctx, r.sessionID); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, "Documents cleared; back to chat mode.")

	case chatcmd.KindStats:
		stats, err := sessionService.Stats(ctx, r.sessionID)
		if err != nil {
			return false, err
		}
		printStats(r.out, stats)

	case chatcmd.KindDocuments:
		docs, err := sessionService.Documents(ctx, r.sessionID)
		if err != nil {
			return false, err
		}
		printDocuments(r.out, docs)

	case chatcmd.KindModels:
		stats, err := sessionService.Stats(ctx, r.sessionID)
		if err != nil {
			return false, err
		}
		printModels(r.out, conversationService.Models(), stats.Model)

	case chatcmd.KindHistory:
		turns, err := conversationService.Transcript(ctx, r.sessionID)
		if err != nil {
			return false, err
		}
		printTranscript(r.out, turns)

	case chatcmd.KindHelp:
		fmt.Fprintln(r.out, chatcmd.Help())

	case chatcmd.KindQuit:
		return true, nil
	}

	return false, nil
}

func (r *repl) answer(turn *domain.Turn, err error) error {
	if errors.Is(err, domain.ErrStaleResponse) {
		fmt.Fprintln(r.out, "(answer discarded: the conversation changed while it was generating)")
		return nil
	}
	if err != nil {
		return err
	}
	printTurn(r.out, turn)
	return nil
}

// ingest reads and indexes files into the session.
func (r *repl) ingest(ctx context.Context, paths []string) error {
	report, err := ingestPaths(ctx, r.sessionID, paths)
	if err != nil {
		return err
	}
	printIngestReport(r.out, report)
	return nil
}

// ingestPaths reads files from disk and ingests the readable ones.
func ingestPaths(ctx context.Context, sessionID string, paths []string) (*domain.IngestReport, error) {
	files, failures := readFiles(paths)

	report := &domain.IngestReport{}
	if len(files) > 0 {
		var err error
		report, err = ingestService.Ingest(ctx, sessionID, files)
		if err != nil {
			return nil, fmt.Errorf("ingest failed: %w", err)
		}
	}
	report.Failures = append(failures, report.Failures...)
	return report, nil
}
