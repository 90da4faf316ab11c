package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported document formats",
	RunE:  runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	for _, g := range ingestService.SupportedFormats() {
		tags := make([]string, len(g.Formats))
		for i, f := range g.Formats {
			tags[i] = "." + string(f)
		}
		cmd.Printf("%-13s %s\n", g.Name+":", strings.Join(tags, " "))
	}
	return nil
}
