package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/adapters/driven/storage/memory"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService.
// By default it returns keyword vectors from keywordVector.
type mockEmbedder struct {
	mu       sync.Mutex
	maxBatch int
	dims     int
	calls    [][]string
	embedFn  func(call int, texts []string) ([][]float32, error)
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{maxBatch: 100, dims: len(keywords)}
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	call := len(m.calls)
	m.calls = append(m.calls, append([]string(nil), texts...))
	fn := m.embedFn
	m.mu.Unlock()

	if fn != nil {
		return fn(call, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = keywordVector(t)
	}
	return out, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockEmbedder) MaxBatchSize() int { return m.maxBatch }
func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }

// keywords are the axes of keywordVector.
var keywords = []string{"refund", "shipping", "warranty", "invoice", "holiday"}

// keywordVector embeds text as keyword counts.
func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(keywords))
	for i, k := range keywords {
		v[i] = float32(strings.Count(lower, k))
	}
	return v
}

// mockLLM implements driven.LLMService.
type mockLLM struct {
	mu      sync.Mutex
	calls   []llmCall
	replyFn func(call int, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error)
}

type llmCall struct {
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	call := len(m.calls)
	m.calls = append(m.calls, llmCall{messages: append([]driven.ChatMessage(nil), messages...), opts: opts})
	fn := m.replyFn
	m.mu.Unlock()

	if fn != nil {
		return fn(call, messages, opts)
	}
	return "answer to: " + messages[len(messages)-1].Content, nil
}

func (m *mockLLM) lastCall() llmCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockLLM) ModelName() string { return "gpt-4o-mini" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

func testPrompts() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptChatSystem:     "CHAT",
		driven.PromptDocumentSystem: "DOCS\n%s",
		driven.PromptLowRelevance:   "LOW",
	}}
}

// mockNormaliser implements driven.Normaliser with canned segments per filename.
type mockNormaliser struct {
	formats  []domain.FormatTag
	segments map[string][]domain.Segment
	errs     map[string]error
}

func (m *mockNormaliser) Formats() []domain.FormatTag { return m.formats }
func (m *mockNormaliser) Priority() int { return 1 }

func (m *mockNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Segment, error) {
	if err := m.errs[raw.Filename]; err != nil {
		return nil, err
	}
	if segs, ok := m.segments[raw.Filename]; ok {
		return segs, nil
	}
	return []domain.Segment{{Text: string(raw.Content), Locator: domain.Locator{Source: raw.Filename}}}, nil
}

// mockAIConfigValidator implements driven.AIConfigValidator.
type mockAIConfigValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIConfigValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIConfigValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

// fastGateway returns gateway settings that retry without noticeable delay.
func fastGateway() domain.GatewaySettings {
	return domain.GatewaySettings{
		BatchSize:      10,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

// newTestRegistry creates a registry backed by the memory adapters.
func newTestRegistry() *SessionRegistry {
	return NewSessionRegistry(
		memory.NewSessionCache[*Session](0),
		memory.NewVectorIndexFactory(),
		memory.NewDocumentStoreFactory(),
		"gpt-4o-mini",
	)
}
