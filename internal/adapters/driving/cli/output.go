package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// snippetLength caps citation excerpts.
const snippetLength = 160

func printTurn(w io.Writer, turn *domain.Turn) {
	if turn.Failed {
		fmt.Fprintf(w, "Error: %s\n", turn.Error)
		fmt.Fprintln(w, "Use /retry to try again.")
		return
	}

	fmt.Fprintln(w, turn.Content)

	if turn.LowRelevance {
		fmt.Fprintln(w, "\n(No passage in your documents matched closely; the answer may rely on general knowledge.)")
	}
	if len(turn.Citations) == 0 {
		return
	}

	fmt.Fprintln(w, "\nSources:")
	for i, c := range turn.Citations {
		fmt.Fprintf(w, "  [%d] %s (%.2f)\n", i+1, c.Locator.String(), c.Similarity)
		fmt.Fprintf(w, "      %s\n", snippet(c.Content))
	}
}

func printIngestReport(w io.Writer, report *domain.IngestReport) {
	for _, d := range report.Documents {
		fmt.Fprintf(w, "Indexed %s (%d chunks)\n", d.Filename, d.ChunkCount)
	}
	for _, f := range report.Warnings {
		fmt.Fprintf(w, "Warning: %s: %v\n", f.Filename, f.Err)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(w, "Failed: %s: %v\n", f.Filename, f.Err)
	}
	if len(report.Documents) > 0 {
		fmt.Fprintf(w, "%d document(s), %d chunk(s) added.\n", len(report.Documents), report.ChunksIndexed)
	}
}

func printStats(w io.Writer, stats domain.SessionStats) {
	mode := "document"
	if stats.ChatMode() {
		mode = "chat"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Session:\t%s\n", stats.SessionID)
	fmt.Fprintf(tw, "Model:\t%s\n", stats.Model)
	fmt.Fprintf(tw, "Mode:\t%s\n", mode)
	fmt.Fprintf(tw, "Documents:\t%d\n", stats.DocumentsProcessed)
	fmt.Fprintf(tw, "Chunks:\t%d\n", stats.VectorStoreSize)
	if stats.Dimension > 0 {
		fmt.Fprintf(tw, "Dimension:\t%d\n", stats.Dimension)
	}
	fmt.Fprintf(tw, "Messages:\t%d\n", stats.TranscriptLength)
	fmt.Fprintf(tw, "Storage:\t%s\n", stats.StorageType)
	tw.Flush() //nolint:errcheck // writer errors surface on the underlying stream
}

func printDocuments(w io.Writer, docs []domain.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents uploaded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tFORMAT\tCHUNKS\tSIZE")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.Filename, d.Format, d.ChunkCount, humanBytes(d.ByteLength))
	}
	tw.Flush() //nolint:errcheck // writer errors surface on the underlying stream
}

func printModels(w io.Writer, models []domain.ModelInfo, current string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range models {
		marker := " "
		if m.ID == current {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\n", marker, m.ID, m.Provider, m.Description)
	}
	tw.Flush() //nolint:errcheck // writer errors surface on the underlying stream
}

// printTranscript numbers turns from 1, matching /edit.
func printTranscript(w io.Writer, turns []domain.Turn) {
	if len(turns) == 0 {
		fmt.Fprintln(w, "No messages yet.")
		return
	}
	for _, t := range turns {
		switch {
		case t.Role == domain.RoleUser:
			fmt.Fprintf(w, "[%d] you: %s\n", t.Seq+1, t.Content)
		case t.Failed:
			fmt.Fprintf(w, "[%d] assistant (failed): %s\n", t.Seq+1, t.Error)
		default:
			fmt.Fprintf(w, "[%d] assistant (%s): %s\n", t.Seq+1, t.Model, snippet(t.Content))
		}
	}
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= snippetLength {
		return s
	}
	return string(runes[:snippetLength-3]) + "..."
}

func humanBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
