package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

func newServer(t *testing.T, reqs *[]map[string]any, status int, body string) *LLMService {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*reqs = append(*reqs, req)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewLLMService(LLMConfig{BaseURL: server.URL})
}

func TestChat(t *testing.T) {
	var reqs []map[string]any
	svc := newServer(t, &reqs, http.StatusOK, `{"message":{"role":"assistant","content":"pong"},"done":true}`)

	reply, err := svc.Chat(context.Background(),
		[]driven.ChatMessage{{Role: driven.ChatRoleUser, Content: "ping"}},
		driven.ChatOptions{Model: "mistral", Temperature: 0})
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)

	assert.Equal(t, "mistral", reqs[0]["model"])
	assert.Equal(t, false, reqs[0]["stream"])
	opts := reqs[0]["options"].(map[string]any)
	assert.Contains(t, opts, "temperature")
	assert.NotContains(t, opts, "num_predict")
}

func TestChat_DefaultModel(t *testing.T) {
	var reqs []map[string]any
	svc := newServer(t, &reqs, http.StatusOK, `{"message":{"content":"ok"}}`)

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, reqs[0]["model"])
	assert.InDelta(t, 64.0, reqs[0]["options"].(map[string]any)["num_predict"], 1e-9)
}

func TestChat_ModelNotPulled(t *testing.T) {
	var reqs []map[string]any
	svc := newServer(t, &reqs, http.StatusNotFound, `{"error":"model 'qwen2.5' not found"}`)

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{Model: "qwen2.5"})
	assert.ErrorIs(t, err, domain.ErrProviderError)
	assert.False(t, domain.IsRetryable(err))
}

func TestDescribeImage(t *testing.T) {
	var reqs []map[string]any
	svc := newServer(t, &reqs, http.StatusOK, `{"message":{"content":"a cat"}}`)

	desc, err := svc.DescribeImage(context.Background(), "image/png", []byte("img"), "What is this?")
	require.NoError(t, err)
	assert.Equal(t, "a cat", desc)

	assert.Equal(t, DefaultVisionModel, reqs[0]["model"])
	msg := reqs[0]["messages"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"aW1n"}, msg["images"])
}
