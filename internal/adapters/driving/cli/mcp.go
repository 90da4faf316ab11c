package cli

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driving/mcp"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Tools: ask, edit_turn, retry, switch_model, ingest_files, reset_session,
session_stats, list_models. Resource: transcript://{session}.

Use --port to serve streamable HTTP at /mcp instead, for MCP Inspector
or remote clients.

Examples:
  # Stdio mode (default, for Claude Desktop)
  docsassistant mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docsassistant mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "docsassistant": {
        "command": "/path/to/docsassistant",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP bind host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("port %d out of range", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Conversation: conversationService,
		Ingest:       ingestService,
		Session:      sessionService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	// Stdout carries the protocol in stdio mode.
	logger.SetOutput(os.Stderr)

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s/mcp\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
