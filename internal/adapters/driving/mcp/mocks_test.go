package mcp

import (
	"context"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	turn       *domain.Turn
	transcript []domain.Turn
	models     []domain.ModelInfo
	err        error

	lastSession string
	lastContent string
	lastIndex   int
	lastOpts    driving.GenerateOptions
	lastModel   string
}

func (m *mockConversationService) Ask(_ context.Context, sessionID, content string, opts driving.GenerateOptions) (*domain.Turn, error) {
	m.lastSession, m.lastContent, m.lastOpts = sessionID, content, opts
	return m.turn, m.err
}

func (m *mockConversationService) Edit(_ context.Context, sessionID string, index int, content string, opts driving.GenerateOptions) (*domain.Turn, error) {
	m.lastSession, m.lastIndex, m.lastContent, m.lastOpts = sessionID, index, content, opts
	return m.turn, m.err
}

func (m *mockConversationService) Retry(_ context.Context, sessionID string, opts driving.GenerateOptions) (*domain.Turn, error) {
	m.lastSession, m.lastOpts = sessionID, opts
	return m.turn, m.err
}

func (m *mockConversationService) SwitchModel(_ context.Context, sessionID, model string) error {
	m.lastSession, m.lastModel = sessionID, model
	return m.err
}

func (m *mockConversationService) Transcript(_ context.Context, sessionID string) ([]domain.Turn, error) {
	m.lastSession = sessionID
	return m.transcript, m.err
}

func (m *mockConversationService) Models() []domain.ModelInfo { return m.models }

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error

	calls     int
	lastFiles []domain.UploadedFile
}

func (m *mockIngestService) Ingest(_ context.Context, _ string, files []domain.UploadedFile) (*domain.IngestReport, error) {
	m.calls++
	m.lastFiles = files
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return &domain.IngestReport{}, nil
	}
	return m.report, nil
}

func (m *mockIngestService) SupportedFormats() []domain.FormatGroup {
	return domain.SupportedFormatGroups()
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	stats domain.SessionStats
	err   error

	opened  []string
	reset   []string
	cleared []string
}

func (m *mockSessionService) Open(_ context.Context, sessionID string) (domain.SessionStats, error) {
	m.opened = append(m.opened, sessionID)
	return m.stats, m.err
}

func (m *mockSessionService) Stats(_ context.Context, _ string) (domain.SessionStats, error) {
	return m.stats, m.err
}

func (m *mockSessionService) Documents(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockSessionService) Reset(_ context.Context, sessionID string) error {
	m.reset = append(m.reset, sessionID)
	return m.err
}

func (m *mockSessionService) ClearDocuments(_ context.Context, sessionID string) error {
	m.cleared = append(m.cleared, sessionID)
	return m.err
}

func (m *mockSessionService) Evict(_ context.Context, _ string) error { return m.err }

func (m *mockSessionService) List(_ context.Context) []domain.SessionStats { return nil }

// newTestServer builds a server over fresh mocks.
func newTestServer() (*Server, *mockConversationService, *mockIngestService, *mockSessionService) {
	conv := &mockConversationService{}
	ingest := &mockIngestService{}
	session := &mockSessionService{}
	server, err := NewServer(&Ports{Conversation: conv, Ingest: ingest, Session: session})
	if err != nil {
		panic(err)
	}
	return server, conv, ingest, session
}
