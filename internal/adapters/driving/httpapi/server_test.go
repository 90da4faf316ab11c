package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

type fixture struct {
	conversation *mockConversationService
	ingest       *mockIngestService
	session      *mockSessionService
	server       *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		conversation: &mockConversationService{},
		ingest:       &mockIngestService{},
		session:      &mockSessionService{},
	}
	server, err := NewServer(&Ports{
		Conversation: f.conversation,
		Ingest:       f.ingest,
		Session:      f.session,
	})
	require.NoError(t, err)
	f.server = server
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return f.send(t, req)
}

func (f *fixture) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := f.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeError(t *testing.T, data []byte) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Error
}

func TestNewServer(t *testing.T) {
	tests := []struct {
		name     string
		ports    *Ports
		expected error
	}{
		{"missing conversation", &Ports{Ingest: &mockIngestService{}, Session: &mockSessionService{}}, ErrMissingConversationService},
		{"missing ingest", &Ports{Conversation: &mockConversationService{}, Session: &mockSessionService{}}, ErrMissingIngestService},
		{"missing session", &Ports{Conversation: &mockConversationService{}, Ingest: &mockIngestService{}}, ErrMissingSessionService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.ports)
			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, server)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidTurnReference), http.StatusBadRequest},
		{domain.ErrUnknownModel, http.StatusBadRequest},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrStaleResponse, http.StatusConflict},
		{domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListModels(t *testing.T) {
	f := newFixture(t)
	f.conversation.models = []domain.ModelInfo{{ID: "gpt-4o-mini", Provider: domain.AIProviderOpenAI}}

	resp, data := f.do(t, http.MethodGet, "/models", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Models []domain.ModelInfo `json:"models"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	require.Len(t, body.Models, 1)
	assert.Equal(t, "gpt-4o-mini", body.Models[0].ID)
}

func TestListFormats(t *testing.T) {
	f := newFixture(t)

	resp, data := f.do(t, http.MethodGet, "/formats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Groups []domain.FormatGroup `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Len(t, body.Groups, len(domain.SupportedFormatGroups()))
}

func TestCreateSession(t *testing.T) {
	t.Run("without body opens a fresh session", func(t *testing.T) {
		f := newFixture(t)
		f.session.stats = domain.SessionStats{SessionID: "generated", Model: "gpt-4o-mini"}

		resp, data := f.do(t, http.MethodPost, "/sessions", nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, []string{""}, f.session.opened)

		var stats domain.SessionStats
		require.NoError(t, json.Unmarshal(data, &stats))
		assert.Equal(t, "generated", stats.SessionID)
	})

	t.Run("with requested id", func(t *testing.T) {
		f := newFixture(t)
		resp, _ := f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{SessionID: "mine"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, []string{"mine"}, f.session.opened)
	})
}

func TestGetSession_NotFound(t *testing.T) {
	f := newFixture(t)
	f.session.err = domain.ErrSessionNotFound

	resp, data := f.do(t, http.MethodGet, "/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decodeError(t, data), "session not found")
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodDelete, "/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"s1"}, f.session.evicted)
}

func TestResetSession(t *testing.T) {
	f := newFixture(t)
	f.session.stats = domain.SessionStats{SessionID: "s1"}

	resp, _ := f.do(t, http.MethodPost, "/sessions/s1/reset", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"s1"}, f.session.reset)
}

func TestClearDocuments(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodDelete, "/sessions/s1/documents", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"s1"}, f.session.cleared)
}

func multipartRequest(t *testing.T, path string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile(uploadField, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadDocuments(t *testing.T) {
	t.Run("indexes files and reports failures", func(t *testing.T) {
		f := newFixture(t)
		f.ingest.report = &domain.IngestReport{
			Documents:     []domain.Document{{ID: "d1", Filename: "a.txt", ChunkCount: 2}},
			Failures:      []domain.IngestFailure{{Filename: "b.bin", Err: domain.ErrUnsupportedFormat}},
			ChunksIndexed: 2,
		}

		req := multipartRequest(t, "/sessions/s1/documents", map[string]string{
			"a.txt": "hello world",
			"b.bin": "\x00\x01",
		})
		resp, data := f.send(t, req)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		assert.Equal(t, "s1", f.ingest.lastSession)
		require.Len(t, f.ingest.lastFiles, 2)

		var body IngestResponse
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, 2, body.ChunksIndexed)
		require.Len(t, body.Failures, 1)
		assert.Equal(t, "b.bin", body.Failures[0].Filename)
		assert.NotEmpty(t, body.Failures[0].Error)
		assert.Empty(t, body.Warnings)
	})

	t.Run("all files failing is unprocessable", func(t *testing.T) {
		f := newFixture(t)
		f.ingest.report = &domain.IngestReport{
			Failures: []domain.IngestFailure{{Filename: "b.bin", Err: domain.ErrUnsupportedFormat}},
		}

		req := multipartRequest(t, "/sessions/s1/documents", map[string]string{"b.bin": "x"})
		resp, data := f.send(t, req)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body IngestResponse
		require.NoError(t, json.Unmarshal(data, &body))
		assert.NotNil(t, body.Documents)
	})

	t.Run("no files is a bad request", func(t *testing.T) {
		f := newFixture(t)
		req := multipartRequest(t, "/sessions/s1/documents", nil)
		resp, _ := f.send(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, f.ingest.lastFiles)
	})
}

func TestPostMessage(t *testing.T) {
	t.Run("returns the assistant turn", func(t *testing.T) {
		f := newFixture(t)
		f.conversation.turn = &domain.Turn{Seq: 1, Role: domain.RoleAssistant, Content: "Paris", Mode: domain.ModeChat}
		temp := 0.2

		resp, data := f.do(t, http.MethodPost, "/sessions/s1/messages", MessageRequest{
			Content:     "Capital of France?",
			Model:       "gpt-4o",
			Temperature: &temp,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		assert.Equal(t, "s1", f.conversation.lastSession)
		assert.Equal(t, "Capital of France?", f.conversation.lastContent)
		assert.Equal(t, "gpt-4o", f.conversation.lastOpts.Model)
		require.NotNil(t, f.conversation.lastOpts.Temperature)
		assert.InDelta(t, 0.2, *f.conversation.lastOpts.Temperature, 1e-9)

		var turn domain.Turn
		require.NoError(t, json.Unmarshal(data, &turn))
		assert.Equal(t, "Paris", turn.Content)
	})

	tests := []struct {
		name string
		body any
	}{
		{"missing body", nil},
		{"missing content", MessageRequest{Model: "gpt-4o"}},
		{"temperature out of range", map[string]any{"content": "hi", "temperature": 3.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			resp, _ := f.do(t, http.MethodPost, "/sessions/s1/messages", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, f.conversation.lastContent)
		})
	}

	t.Run("llm unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.conversation.err = domain.ErrLLMUnavailable
		resp, _ := f.do(t, http.MethodPost, "/sessions/s1/messages", MessageRequest{Content: "hi"})
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestEditMessage(t *testing.T) {
	t.Run("passes the index through", func(t *testing.T) {
		f := newFixture(t)
		f.conversation.turn = &domain.Turn{Seq: 3, Role: domain.RoleAssistant, Content: "edited"}

		resp, _ := f.do(t, http.MethodPut, "/sessions/s1/messages/2", MessageRequest{Content: "new question"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, f.conversation.lastIndex)
		assert.Equal(t, "new question", f.conversation.lastContent)
	})

	t.Run("non numeric index", func(t *testing.T) {
		f := newFixture(t)
		resp, _ := f.do(t, http.MethodPut, "/sessions/s1/messages/two", MessageRequest{Content: "x"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid turn reference", func(t *testing.T) {
		f := newFixture(t)
		f.conversation.err = domain.ErrInvalidTurnReference
		resp, _ := f.do(t, http.MethodPut, "/sessions/s1/messages/1", MessageRequest{Content: "x"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRetry(t *testing.T) {
	f := newFixture(t)
	f.conversation.turn = &domain.Turn{Seq: 1, Role: domain.RoleAssistant, Content: "again"}

	resp, _ := f.do(t, http.MethodPost, "/sessions/s1/retry", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "s1", f.conversation.lastSession)
	assert.Empty(t, f.conversation.lastOpts.Model)

	resp, _ = f.do(t, http.MethodPost, "/sessions/s1/retry", RetryRequest{Model: "gpt-4o"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gpt-4o", f.conversation.lastOpts.Model)
}

func TestSwitchModel(t *testing.T) {
	t.Run("switches", func(t *testing.T) {
		f := newFixture(t)
		f.session.stats = domain.SessionStats{SessionID: "s1", Model: "gpt-4o"}

		resp, data := f.do(t, http.MethodPut, "/sessions/s1/model", ModelRequest{Model: "gpt-4o"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "gpt-4o", f.conversation.lastModel)

		var stats domain.SessionStats
		require.NoError(t, json.Unmarshal(data, &stats))
		assert.Equal(t, "gpt-4o", stats.Model)
	})

	t.Run("unknown model", func(t *testing.T) {
		f := newFixture(t)
		f.conversation.err = domain.ErrUnknownModel
		resp, _ := f.do(t, http.MethodPut, "/sessions/s1/model", ModelRequest{Model: "nope"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("model required", func(t *testing.T) {
		f := newFixture(t)
		resp, _ := f.do(t, http.MethodPut, "/sessions/s1/model", ModelRequest{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, f.conversation.lastModel)
	})
}

func TestTranscript(t *testing.T) {
	f := newFixture(t)
	f.conversation.transcript = []domain.Turn{
		{Seq: 0, Role: domain.RoleUser, Content: "hi"},
		{Seq: 1, Role: domain.RoleAssistant, Content: "hello"},
	}

	resp, data := f.do(t, http.MethodGet, "/sessions/s1/transcript", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		SessionID string        `json:"session_id"`
		Turns     []domain.Turn `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "s1", body.SessionID)
	require.Len(t, body.Turns, 2)
	assert.Equal(t, domain.RoleAssistant, body.Turns[1].Role)
}
