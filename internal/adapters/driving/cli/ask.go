package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

var (
	askFiles       []string
	askSession     string
	askModel       string
	askTemperature float64
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Ask one question and print the answer.

With --file, the documents are indexed first and the answer cites them.
Without documents the question is answered as a general chat.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askFiles, "file", "f", nil, "document to ground the answer in (repeatable)")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session to ask in")
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "model to answer with")
	askCmd.Flags().Float64VarP(&askTemperature, "temperature", "t", -1, "sampling temperature (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireChatServices(); err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	ctx := cmd.Context()
	stats, err := sessionService.Open(ctx, askSession)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	sessionID := stats.SessionID

	if len(askFiles) > 0 {
		report, err := ingestPaths(ctx, sessionID, askFiles)
		if err != nil {
			return err
		}
		if !askJSON {
			printIngestReport(cmd.ErrOrStderr(), report)
		}
		if len(report.Documents) == 0 && report.HasFailures() {
			return errors.New("no documents could be indexed")
		}
	}

	opts := driving.GenerateOptions{Model: askModel}
	if cmd.Flags().Changed("temperature") {
		opts.Temperature = &askTemperature
	}

	turn, err := conversationService.Ask(ctx, sessionID, question, opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputTurnJSON(cmd, turn)
	}

	printTurn(cmd.OutOrStdout(), turn)
	if turn.Failed {
		return errors.New("the model did not produce an answer")
	}
	return nil
}

func outputTurnJSON(cmd *cobra.Command, turn *domain.Turn) error {
	data, err := json.MarshalIndent(turn, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
