package chat

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/chatcmd"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/messages"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

var (
	errNoConversationService = errors.New("conversation service not available")
	errNoIngestService       = errors.New("ingest service not available")
	errNoSessionService      = errors.New("session service not available")
)

// The commands below run in Bubbletea's goroutines. They capture what
// they need up front and never touch view state.

func (v *View) loadTranscript() tea.Cmd {
	svc, ctx, id := v.services.Conversation, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.TranscriptLoaded{Err: errNoConversationService}
		}
		turns, err := svc.Transcript(ctx, id)
		return messages.TranscriptLoaded{Turns: turns, Err: err}
	}
}

func (v *View) answer(command chatcmd.Command) tea.Cmd {
	svc, ctx, id := v.services.Conversation, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{Err: errNoConversationService}
		}

		var (
			turn *domain.Turn
			err  error
		)
		switch command.Kind {
		case chatcmd.KindEdit:
			turn, err = svc.Edit(ctx, id, command.Index, command.Text, driving.GenerateOptions{})
		case chatcmd.KindRetry:
			turn, err = svc.Retry(ctx, id, driving.GenerateOptions{Model: command.Model})
		default:
			turn, err = svc.Ask(ctx, id, command.Text, driving.GenerateOptions{})
		}
		return messages.AnswerReceived{Turn: turn, Err: err}
	}
}

func (v *View) switchModel(model string) tea.Cmd {
	svc, ctx, id := v.services.Conversation, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.ModelSwitched{Model: model, Err: errNoConversationService}
		}
		return messages.ModelSwitched{Model: model, Err: svc.SwitchModel(ctx, id, model)}
	}
}

func (v *View) upload(paths []string) tea.Cmd {
	svc, ctx, id := v.services.Ingest, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.FilesIngested{Err: errNoIngestService}
		}

		files, failures := readFiles(paths)
		report := &domain.IngestReport{}
		if len(files) > 0 {
			var err error
			report, err = svc.Ingest(ctx, id, files)
			if err != nil {
				return messages.FilesIngested{Err: fmt.Errorf("ingest failed: %w", err)}
			}
		}
		report.Failures = append(failures, report.Failures...)
		return messages.FilesIngested{Report: report}
	}
}

func (v *View) reset(documentsOnly bool) tea.Cmd {
	svc, ctx, id := v.services.Session, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.SessionReset{DocumentsOnly: documentsOnly, Err: errNoSessionService}
		}
		var err error
		if documentsOnly {
			err = svc.ClearDocuments(ctx, id)
		} else {
			err = svc.Reset(ctx, id)
		}
		return messages.SessionReset{DocumentsOnly: documentsOnly, Err: err}
	}
}

func (v *View) loadStats() tea.Cmd {
	svc, ctx, id := v.services.Session, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.StatsLoaded{Err: errNoSessionService}
		}
		stats, err := svc.Stats(ctx, id)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}
