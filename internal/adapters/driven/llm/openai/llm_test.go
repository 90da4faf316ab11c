package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// captureServer records the raw JSON body of each request.
func captureServer(t *testing.T, reply string, bodies *[]map[string]any) *LLMService {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*bodies = append(*bodies, body)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

const okReply = `{"choices":[{"message":{"role":"assistant","content":"Hello there"},"finish_reason":"stop"}]}`

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)

	svc, err := NewLLMService(LLMConfig{APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultLLMModel, svc.visionModel)
}

func TestChat_PerCallModelAndTemperature(t *testing.T) {
	var bodies []map[string]any
	svc := captureServer(t, okReply, &bodies)

	msgs := []driven.ChatMessage{
		{Role: driven.ChatRoleSystem, Content: "be brief"},
		{Role: driven.ChatRoleUser, Content: "hi"},
	}

	reply, err := svc.Chat(context.Background(), msgs, driven.ChatOptions{Model: "gpt-4o", Temperature: 0})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)

	require.Len(t, bodies, 1)
	assert.Equal(t, "gpt-4o", bodies[0]["model"])
	temp, ok := bodies[0]["temperature"]
	require.True(t, ok, "zero temperature is still sent")
	assert.InDelta(t, 0.0, temp, 1e-9)
	assert.Len(t, bodies[0]["messages"], 2)

	_, err = svc.Chat(context.Background(), msgs, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, bodies[1]["model"])
}

func TestChat_MaxTokensField(t *testing.T) {
	var bodies []map[string]any
	svc := captureServer(t, okReply, &bodies)
	msgs := []driven.ChatMessage{{Role: driven.ChatRoleUser, Content: "hi"}}

	_, err := svc.Chat(context.Background(), msgs, driven.ChatOptions{Model: "gpt-4o-mini", MaxTokens: 50, Temperature: 0.7})
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), msgs, driven.ChatOptions{Model: "o3-mini", MaxTokens: 50, Temperature: 1})
	require.NoError(t, err)

	assert.Contains(t, bodies[0], "max_tokens")
	assert.NotContains(t, bodies[0], "max_completion_tokens")
	assert.Contains(t, bodies[1], "max_completion_tokens")
	assert.NotContains(t, bodies[1], "max_tokens")
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{"server error", http.StatusBadGateway, "upstream", true},
		{"rate limit", http.StatusTooManyRequests, `{"error":{"message":"slow"}}`, true},
		{"auth", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key"}}`, false},
		{"no choices", http.StatusOK, `{"choices":[]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc, err := NewLLMService(LLMConfig{APIKey: "sk", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
			assert.ErrorIs(t, err, domain.ErrProviderError)
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
		})
	}
}

func TestDescribeImage(t *testing.T) {
	var bodies []map[string]any
	svc := captureServer(t, `{"choices":[{"message":{"content":"A bar chart"}}]}`, &bodies)

	desc, err := svc.DescribeImage(context.Background(), "image/png", []byte{0x89, 'P', 'N', 'G'}, "Describe this")
	require.NoError(t, err)
	assert.Equal(t, "A bar chart", desc)

	msgs := bodies[0]["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "Describe this", parts[0].(map[string]any)["text"])

	url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}
