package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// transcriptScheme is the URI scheme for session transcripts.
const transcriptScheme = "transcript://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: transcriptScheme + "{session}",
		Name:        "transcript",
		Description: "Conversation transcript of a session, with citations",
		MIMEType:    "text/markdown",
	}, s.handleTranscriptResource)
}

// handleTranscriptResource renders a session transcript as markdown.
func (s *Server) handleTranscriptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	turns, err := s.ports.Conversation.Transcript(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     renderTranscript(sessionID, turns),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like transcript://{session}.
func extractSessionID(uri string) string {
	if !strings.HasPrefix(uri, transcriptScheme) {
		return ""
	}
	return strings.Trim(strings.TrimPrefix(uri, transcriptScheme), "/")
}

func renderTranscript(sessionID string, turns []domain.Turn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session %s\n", sessionID)

	if len(turns) == 0 {
		b.WriteString("\n_No messages yet._\n")
		return b.String()
	}

	for _, t := range turns {
		b.WriteString("\n")
		switch {
		case t.Role == domain.RoleUser:
			fmt.Fprintf(&b, "## [%d] User\n\n%s\n", t.Seq, t.Content)
		case t.Failed:
			fmt.Fprintf(&b, "## [%d] Assistant (failed)\n\n%s\n", t.Seq, t.Error)
		default:
			fmt.Fprintf(&b, "## [%d] Assistant (%s)\n\n%s\n", t.Seq, t.Model, t.Content)
		}

		if len(t.Citations) > 0 {
			b.WriteString("\nSources:\n")
			for _, c := range t.Citations {
				fmt.Fprintf(&b, "- %s (%.2f)\n", c.Locator.String(), c.Similarity)
			}
		}
	}

	return b.String()
}
