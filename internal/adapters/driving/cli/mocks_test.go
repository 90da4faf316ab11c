package cli

import (
	"context"
	"sync"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driving"
)

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	mu         sync.Mutex
	turn       *domain.Turn
	transcript []domain.Turn
	models     []domain.ModelInfo
	err        error

	asked    []string
	edits    []int
	retries  []string
	switched []string
	lastOpts driving.GenerateOptions
}

func (m *mockConversationService) Ask(_ context.Context, _, content string, opts driving.GenerateOptions) (*domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.asked = append(m.asked, content)
	m.lastOpts = opts
	return m.turn, m.err
}

func (m *mockConversationService) Edit(_ context.Context, _ string, index int, content string, opts driving.GenerateOptions) (*domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, index)
	m.asked = append(m.asked, content)
	m.lastOpts = opts
	return m.turn, m.err
}

func (m *mockConversationService) Retry(_ context.Context, _ string, opts driving.GenerateOptions) (*domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries = append(m.retries, opts.Model)
	m.lastOpts = opts
	return m.turn, m.err
}

func (m *mockConversationService) SwitchModel(_ context.Context, _, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switched = append(m.switched, model)
	return m.err
}

func (m *mockConversationService) Transcript(_ context.Context, _ string) ([]domain.Turn, error) {
	return m.transcript, m.err
}

func (m *mockConversationService) Models() []domain.ModelInfo { return m.models }

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	mu     sync.Mutex
	report *domain.IngestReport
	err    error
	files  []domain.UploadedFile
}

func (m *mockIngestService) Ingest(_ context.Context, _ string, files []domain.UploadedFile) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, files...)
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	report := &domain.IngestReport{}
	for _, f := range files {
		report.Documents = append(report.Documents, domain.Document{Filename: f.Filename, ChunkCount: 1})
		report.ChunksIndexed++
	}
	return report, nil
}

func (m *mockIngestService) SupportedFormats() []domain.FormatGroup {
	return domain.SupportedFormatGroups()
}

func (m *mockIngestService) ingested() []domain.UploadedFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.UploadedFile(nil), m.files...)
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	stats     domain.SessionStats
	documents []domain.Document
	err       error

	opened  []string
	reset   int
	cleared int
}

func (m *mockSessionService) Open(_ context.Context, sessionID string) (domain.SessionStats, error) {
	m.opened = append(m.opened, sessionID)
	stats := m.stats
	if stats.SessionID == "" {
		stats.SessionID = "test-session"
	}
	return stats, m.err
}

func (m *mockSessionService) Stats(_ context.Context, _ string) (domain.SessionStats, error) {
	return m.stats, m.err
}

func (m *mockSessionService) Documents(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockSessionService) Reset(_ context.Context, _ string) error {
	m.reset++
	return m.err
}

func (m *mockSessionService) ClearDocuments(_ context.Context, _ string) error {
	m.cleared++
	return m.err
}

func (m *mockSessionService) Evict(_ context.Context, _ string) error { return m.err }

func (m *mockSessionService) List(_ context.Context) []domain.SessionStats { return nil }

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error

	embeddingProvider domain.AIProvider
	embeddingModel    string
	embeddingKey      string
	llmProvider       domain.AIProvider
	llmModel          string
	llmKey            string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embeddingProvider, m.embeddingModel, m.embeddingKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmProvider, m.llmModel, m.llmKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.validateErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.validateErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	conversation *mockConversationService
	ingest       *mockIngestService
	session      *mockSessionService
	settings     *mockSettingsService
}

// setupTestServices installs fresh mocks and returns them with a cleanup func.
func setupTestServices() (*testServices, func()) {
	oldConversation, oldIngest, oldSession, oldSettings := conversationService, ingestService, sessionService, settingsService

	ts := &testServices{
		conversation: &mockConversationService{
			turn:   &domain.Turn{Seq: 1, Role: domain.RoleAssistant, Content: "mock answer", Model: "gpt-4o-mini", Mode: domain.ModeChat},
			models: domain.ModelCatalogue(),
		},
		ingest:   &mockIngestService{},
		session:  &mockSessionService{stats: domain.SessionStats{SessionID: "test-session", Model: "gpt-4o-mini", StorageType: domain.StorageMemoryOnly}},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	SetServices(Services{
		Conversation: ts.conversation,
		Ingest:       ts.ingest,
		Session:      ts.session,
		Settings:     ts.settings,
	})

	return ts, func() {
		conversationService, ingestService, sessionService, settingsService = oldConversation, oldIngest, oldSession, oldSettings
	}
}
