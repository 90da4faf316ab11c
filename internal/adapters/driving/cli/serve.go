package cli

import (
	"github.com/spf13/cobra"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/httpapi"
)

var (
	serveAddr      string
	serveBodyLimit int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start a JSON HTTP API over the conversation engine.

Routes:
  POST   /sessions                      open a session
  GET    /sessions/:id                  session statistics
  DELETE /sessions/:id                  end a session
  POST   /sessions/:id/reset            clear conversation and documents
  POST   /sessions/:id/documents        upload files (multipart field "files")
  DELETE /sessions/:id/documents        remove all documents
  POST   /sessions/:id/messages         ask a question
  PUT    /sessions/:id/messages/:index  edit a message and regenerate
  POST   /sessions/:id/retry            regenerate the last answer
  PUT    /sessions/:id/model            switch model
  GET    /sessions/:id/transcript       the conversation so far
  GET    /models, /formats`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
	serveCmd.Flags().IntVar(&serveBodyLimit, "body-limit", httpapi.DefaultBodyLimit, "maximum request size in bytes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := httpapi.NewServer(&httpapi.Ports{
		Conversation: conversationService,
		Ingest:       ingestService,
		Session:      sessionService,
	}, httpapi.WithBodyLimit(serveBodyLimit))
	if err != nil {
		return err
	}

	cmd.Printf("HTTP API listening on %s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
