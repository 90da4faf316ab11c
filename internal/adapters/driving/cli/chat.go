package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/filesystem"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/tui/messages"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

var (
	chatSession string
	chatFiles   []string
	chatWatch   string
	chatModel   string
	chatPlain   bool
)

// isTerminal reports whether both stdin and stdout are terminals; replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start a conversation about your documents.

On a terminal this opens the full-screen chat. When input is piped, or with
--plain, it reads one line at a time; lines starting with "/" are commands:

  /edit N text    Replace message N and regenerate from there
  /retry [model]  Regenerate the last answer
  /model NAME     Switch model
  /upload FILE... Add documents
  /reset, /clear, /stats, /docs, /history, /models, /help, /quit

Use --watch to index files as they appear in a directory.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session to join (new session when empty)")
	chatCmd.Flags().StringSliceVarP(&chatFiles, "file", "f", nil, "document to upload before chatting (repeatable)")
	chatCmd.Flags().StringVarP(&chatWatch, "watch", "w", "", "directory to watch for new documents")
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "model to answer with")
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use the line-based chat even on a terminal")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := requireChatServices(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stats, err := sessionService.Open(ctx, chatSession)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	sessionID := stats.SessionID
	logger.Debug("Chat session %s", sessionID)

	if chatModel != "" {
		if err := conversationService.SwitchModel(ctx, sessionID, chatModel); err != nil {
			return fmt.Errorf("failed to switch model: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if len(chatFiles) > 0 {
		report, err := ingestPaths(ctx, sessionID, chatFiles)
		if err != nil {
			return err
		}
		printIngestReport(out, report)
	}

	if !chatPlain && isTerminal() {
		return runChatTUI(ctx, sessionID)
	}

	r := newREPL(cmd.InOrStdin(), out, sessionID, false)
	if chatWatch != "" {
		if err := startWatch(ctx, chatWatch, func(paths []string) {
			report, err := ingestPaths(ctx, sessionID, paths)
			if err != nil {
				fmt.Fprintf(r.out, "Error: %v\n", err)
				return
			}
			printIngestReport(r.out, report)
		}); err != nil {
			return err
		}
	}
	fmt.Fprintf(r.out, "Session %s. Type /help for commands.\n", sessionID)
	return r.Run(ctx)
}

func runChatTUI(ctx context.Context, sessionID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	// Logging to the terminal would corrupt the alt screen.
	logger.SetOutput(io.Discard)

	app, err := tui.NewApp(&tui.Ports{
		Conversation: conversationService,
		Ingest:       ingestService,
		Session:      sessionService,
	}, sessionID)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if chatWatch != "" {
		if err := startWatch(ctx, chatWatch, func(paths []string) {
			report, err := ingestPaths(ctx, sessionID, paths)
			p.Send(messages.FilesIngested{Report: report, Err: err})
		}); err != nil {
			return err
		}
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// startWatch indexes files dropped into dir until ctx ends.
func startWatch(ctx context.Context, dir string, onBatch func([]string)) error {
	if err := filesystem.NewWatcher(dir).Start(ctx, onBatch); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}

func requireChatServices() error {
	switch {
	case conversationService == nil:
		return errors.New("conversation service not configured")
	case ingestService == nil:
		return errors.New("ingest service not configured")
	case sessionService == nil:
		return errors.New("session service not configured")
	}
	return nil
}
