// Package cli provides the docsassistant command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/filesystem"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// Services configured by main before Execute.
var (
	conversationService driving.ConversationService
	ingestService       driving.IngestService
	sessionService      driving.SessionService
	settingsService     driving.SettingsService
)

var (
	version = "dev"
	verbose bool
)

// readFiles loads uploads from disk; replaced in tests.
var readFiles = filesystem.ReadFiles

var rootCmd = &cobra.Command{
	Use:   "docsassistant",
	Short: "Chat with your documents",
	Long: `docsassistant answers questions about the documents you give it.

Upload PDFs, Word files, spreadsheets, slides, web pages, e-mails or images
and ask questions in plain language. Answers cite the passages they were
drawn from. With no documents loaded it behaves as a general assistant.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services groups the driving ports the commands use.
type Services struct {
	Conversation driving.ConversationService
	Ingest       driving.IngestService
	Session      driving.SessionService
	Settings     driving.SettingsService
}

// SetServices wires the driving ports used by the commands.
func SetServices(s Services) {
	conversationService = s.Conversation
	ingestService = s.Ingest
	sessionService = s.Session
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
