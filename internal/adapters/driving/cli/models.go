package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models",
	Long:  `List the models that can answer questions. The default model is marked with *.`,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	if conversationService == nil {
		return errors.New("conversation service not configured")
	}

	current := ""
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			current = settings.LLM.Model
		}
	}

	models := conversationService.Models()
	if len(models) == 0 {
		cmd.Println("No models available. Run 'docsassistant settings llm' to configure a provider.")
		return nil
	}
	printModels(cmd.OutOrStdout(), models, current)
	return nil
}
