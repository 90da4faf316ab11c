package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/filesystem"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	SessionID   string   `json:"session_id,omitempty" jsonschema:"session to continue; a new session is opened when empty"`
	Question    string   `json:"question" jsonschema:"the question or message to send"`
	Model       string   `json:"model,omitempty" jsonschema:"model override for this answer"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature between 0 and 2"`
}

// EditTurnInput is the input schema for the edit_turn tool.
type EditTurnInput struct {
	SessionID string `json:"session_id" jsonschema:"the session holding the turn"`
	Index     int    `json:"index" jsonschema:"zero-based position of the user turn in the transcript"`
	Content   string `json:"content" jsonschema:"replacement text for the user turn"`
	Model     string `json:"model,omitempty" jsonschema:"model override for the regenerated answer"`
}

// RetryInput is the input schema for the retry tool.
type RetryInput struct {
	SessionID string `json:"session_id" jsonschema:"the session to retry in"`
	Model     string `json:"model,omitempty" jsonschema:"model to regenerate with"`
}

// SwitchModelInput is the input schema for the switch_model tool.
type SwitchModelInput struct {
	SessionID string `json:"session_id" jsonschema:"the session to update"`
	Model     string `json:"model" jsonschema:"identifier from list_models"`
}

// IngestFilesInput is the input schema for the ingest_files tool.
type IngestFilesInput struct {
	SessionID string   `json:"session_id,omitempty" jsonschema:"session to add files to; a new session is opened when empty"`
	Paths     []string `json:"paths" jsonschema:"local file paths to ingest"`
}

// SessionInput identifies a session.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the session identifier"`
}

// ResetSessionInput is the input schema for the reset_session tool.
type ResetSessionInput struct {
	SessionID     string `json:"session_id" jsonschema:"the session to reset"`
	DocumentsOnly bool   `json:"documents_only,omitempty" jsonschema:"clear documents but keep the conversation"`
}

// ListModelsInput is the input schema for the list_models tool.
type ListModelsInput struct{}

// CitationOutput is a source passage backing an answer.
type CitationOutput struct {
	DocumentID string  `json:"document_id"`
	Location   string  `json:"location"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// TurnOutput is the output schema for tools that produce an answer.
type TurnOutput struct {
	SessionID    string           `json:"session_id"`
	Seq          int              `json:"seq"`
	Role         string           `json:"role"`
	Content      string           `json:"content"`
	Model        string           `json:"model,omitempty"`
	Mode         string           `json:"mode,omitempty"`
	LowRelevance bool             `json:"low_relevance,omitempty"`
	Failed       bool             `json:"failed,omitempty"`
	Error        string           `json:"error,omitempty"`
	Citations    []CitationOutput `json:"citations,omitempty"`
}

// StatsOutput is the output schema for session statistics.
type StatsOutput struct {
	SessionID          string `json:"session_id"`
	Model              string `json:"model"`
	Mode               string `json:"mode"`
	DocumentsProcessed int    `json:"documents_processed"`
	VectorStoreSize    int    `json:"vectorstore_size"`
	Dimension          int    `json:"dimension"`
	TranscriptLength   int    `json:"transcript_length"`
	StorageType        string `json:"storage_type"`
	CreatedAt          string `json:"created_at"`
	LastActive         string `json:"last_active"`
}

// DocumentOutput is an indexed document.
type DocumentOutput struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Title    string `json:"title,omitempty"`
	Chunks   int    `json:"chunks"`
}

// FileErrorOutput reports a file that failed or degraded.
type FileErrorOutput struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// IngestOutput is the output schema for the ingest_files tool.
type IngestOutput struct {
	SessionID     string            `json:"session_id"`
	Documents     []DocumentOutput  `json:"documents"`
	Failures      []FileErrorOutput `json:"failures,omitempty"`
	Warnings      []FileErrorOutput `json:"warnings,omitempty"`
	ChunksIndexed int               `json:"chunks_indexed"`
}

// ModelsOutput is the output schema for the list_models tool.
type ModelsOutput struct {
	Models []domain.ModelInfo `json:"models"`
	Count  int                `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question; answers are grounded in the session's documents when any are loaded",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "edit_turn",
		Description: "Replace an earlier user message, discard everything after it and regenerate the answer",
	}, s.handleEditTurn)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retry",
		Description: "Regenerate the latest answer, optionally with a different model",
	}, s.handleRetry)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "switch_model",
		Description: "Change the default model for a session",
	}, s.handleSwitchModel)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_files",
		Description: "Normalise, chunk and index local files into a session",
	}, s.handleIngestFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_session",
		Description: "Clear a session's conversation and documents",
	}, s.handleResetSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "session_stats",
		Description: "Report a session's model, document count and index size",
	}, s.handleSessionStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_models",
		Description: "List the models available for answering",
	}, s.handleListModels)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, TurnOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, TurnOutput{}, fmt.Errorf("question: %w", domain.ErrInvalidInput)
	}

	sessionID, err := s.ensureSession(ctx, input.SessionID)
	if err != nil {
		return nil, TurnOutput{}, err
	}

	turn, err := s.ports.Conversation.Ask(ctx, sessionID, input.Question, driving.GenerateOptions{
		Model:       input.Model,
		Temperature: input.Temperature,
	})
	if err != nil {
		return nil, TurnOutput{}, err
	}

	return nil, toTurnOutput(sessionID, turn), nil
}

// handleEditTurn handles the edit_turn tool invocation.
func (s *Server) handleEditTurn(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EditTurnInput,
) (*mcp.CallToolResult, TurnOutput, error) {
	if err := requireSession(input.SessionID); err != nil {
		return nil, TurnOutput{}, err
	}

	turn, err := s.ports.Conversation.Edit(ctx, input.SessionID, input.Index, input.Content, driving.GenerateOptions{
		Model: input.Model,
	})
	if err != nil {
		return nil, TurnOutput{}, err
	}

	return nil, toTurnOutput(input.SessionID, turn), nil
}

// handleRetry handles the retry tool invocation.
func (s *Server) handleRetry(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetryInput,
) (*mcp.CallToolResult, TurnOutput, error) {
	if err := requireSession(input.SessionID); err != nil {
		return nil, TurnOutput{}, err
	}

	turn, err := s.ports.Conversation.Retry(ctx, input.SessionID, driving.GenerateOptions{Model: input.Model})
	if err != nil {
		return nil, TurnOutput{}, err
	}

	return nil, toTurnOutput(input.SessionID, turn), nil
}

// handleSwitchModel handles the switch_model tool invocation.
func (s *Server) handleSwitchModel(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SwitchModelInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if err := requireSession(input.SessionID); err != nil {
		return nil, StatsOutput{}, err
	}

	if err := s.ports.Conversation.SwitchModel(ctx, input.SessionID, input.Model); err != nil {
		return nil, StatsOutput{}, err
	}

	return s.stats(ctx, input.SessionID)
}

// handleIngestFiles handles the ingest_files tool invocation.
func (s *Server) handleIngestFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFilesInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if len(input.Paths) == 0 {
		return nil, IngestOutput{}, fmt.Errorf("paths: %w", domain.ErrInvalidInput)
	}

	sessionID, err := s.ensureSession(ctx, input.SessionID)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	files, readFailures := filesystem.ReadFiles(input.Paths)

	report := &domain.IngestReport{}
	if len(files) > 0 {
		report, err = s.ports.Ingest.Ingest(ctx, sessionID, files)
		if err != nil {
			return nil, IngestOutput{}, err
		}
	}
	report.Failures = append(readFailures, report.Failures...)

	return nil, toIngestOutput(sessionID, report), nil
}

// handleResetSession handles the reset_session tool invocation.
func (s *Server) handleResetSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResetSessionInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if err := requireSession(input.SessionID); err != nil {
		return nil, StatsOutput{}, err
	}

	var err error
	if input.DocumentsOnly {
		err = s.ports.Session.ClearDocuments(ctx, input.SessionID)
	} else {
		err = s.ports.Session.Reset(ctx, input.SessionID)
	}
	if err != nil {
		return nil, StatsOutput{}, err
	}

	return s.stats(ctx, input.SessionID)
}

// handleSessionStats handles the session_stats tool invocation.
func (s *Server) handleSessionStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if err := requireSession(input.SessionID); err != nil {
		return nil, StatsOutput{}, err
	}
	return s.stats(ctx, input.SessionID)
}

// handleListModels handles the list_models tool invocation.
func (s *Server) handleListModels(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListModelsInput,
) (*mcp.CallToolResult, ModelsOutput, error) {
	models := s.ports.Conversation.Models()
	return nil, ModelsOutput{Models: models, Count: len(models)}, nil
}

func (s *Server) stats(ctx context.Context, sessionID string) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Session.Stats(ctx, sessionID)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, toStatsOutput(stats), nil
}

// ensureSession returns sessionID, opening a new session when it is empty.
func (s *Server) ensureSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID != "" {
		return sessionID, nil
	}
	stats, err := s.ports.Session.Open(ctx, "")
	if err != nil {
		return "", fmt.Errorf("opening session: %w", err)
	}
	return stats.SessionID, nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session_id: %w", domain.ErrInvalidInput)
	}
	return nil
}

func toTurnOutput(sessionID string, turn *domain.Turn) TurnOutput {
	out := TurnOutput{
		SessionID:    sessionID,
		Seq:          turn.Seq,
		Role:         string(turn.Role),
		Content:      turn.Content,
		Model:        turn.Model,
		Mode:         string(turn.Mode),
		LowRelevance: turn.LowRelevance,
		Failed:       turn.Failed,
		Error:        turn.Error,
	}
	for _, c := range turn.Citations {
		out.Citations = append(out.Citations, CitationOutput{
			DocumentID: c.DocumentID,
			Location:   c.Locator.String(),
			Content:    c.Content,
			Similarity: c.Similarity,
		})
	}
	return out
}

func toStatsOutput(stats domain.SessionStats) StatsOutput {
	mode := domain.ModeDocument
	if stats.ChatMode() {
		mode = domain.ModeChat
	}
	return StatsOutput{
		SessionID:          stats.SessionID,
		Model:              stats.Model,
		Mode:               string(mode),
		DocumentsProcessed: stats.DocumentsProcessed,
		VectorStoreSize:    stats.VectorStoreSize,
		Dimension:          stats.Dimension,
		TranscriptLength:   stats.TranscriptLength,
		StorageType:        stats.StorageType,
		CreatedAt:          formatTime(stats.CreatedAt),
		LastActive:         formatTime(stats.LastActive),
	}
}

func toIngestOutput(sessionID string, report *domain.IngestReport) IngestOutput {
	out := IngestOutput{
		SessionID:     sessionID,
		Documents:     make([]DocumentOutput, 0, len(report.Documents)),
		Failures:      toFileErrors(report.Failures),
		Warnings:      toFileErrors(report.Warnings),
		ChunksIndexed: report.ChunksIndexed,
	}
	for _, d := range report.Documents {
		out.Documents = append(out.Documents, DocumentOutput{
			ID:       d.ID,
			Filename: d.Filename,
			Format:   string(d.Format),
			Title:    d.Title,
			Chunks:   d.ChunkCount,
		})
	}
	return out
}

func toFileErrors(failures []domain.IngestFailure) []FileErrorOutput {
	if len(failures) == 0 {
		return nil
	}
	out := make([]FileErrorOutput, len(failures))
	for i, f := range failures {
		out[i] = FileErrorOutput{Filename: f.Filename}
		if f.Err != nil {
			out[i].Error = f.Err.Error()
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
