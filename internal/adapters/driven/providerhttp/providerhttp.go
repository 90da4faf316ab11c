// Package providerhttp holds the HTTP plumbing shared by the model provider adapters.
package providerhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// maxMessageLength truncates raw error bodies quoted in messages.
const maxMessageLength = 300

// Do sends req and returns the response body.
// Non-2xx responses become *domain.ProviderError, as do transport failures.
// Context cancellation is returned unwrapped so it is never retried.
func Do(client *http.Client, provider string, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, TransportError(req.Context(), provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TransportError(req.Context(), provider, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ResponseError(provider, resp, body)
	}
	return body, nil
}

// DoJSON sends req and decodes a successful response into out.
func DoJSON(client *http.Client, provider string, req *http.Request, out any) error {
	body, err := Do(client, provider, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewProviderError(provider, http.StatusOK, "decode response: "+err.Error())
	}
	return nil
}

// ResponseError builds the provider error for a failed HTTP response.
func ResponseError(provider string, resp *http.Response, body []byte) *domain.ProviderError {
	pe := domain.NewProviderError(provider, resp.StatusCode, ErrorMessage(body))
	pe.RetryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	return pe
}

// TransportError classifies a failure to complete the round trip.
func TransportError(ctx context.Context, provider string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return domain.NewProviderError(provider, 0, err.Error())
}

// ErrorMessage extracts a readable message from an error body. It understands
// {"error":{"message":...}} (OpenAI, Anthropic) and {"error":"..."} (Ollama).
func ErrorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	if len(msg) > maxMessageLength {
		msg = msg[:maxMessageLength] + "..."
	}
	return msg
}

// ParseRetryAfter reads a Retry-After header given as seconds or an HTTP date.
// Unparseable or past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// Ping issues a GET and reports any non-2xx status.
func Ping(ctx context.Context, client *http.Client, provider, url string, header http.Header) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create ping request: %w", provider, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if _, err := Do(client, provider, req); err != nil {
		return fmt.Errorf("%s: ping failed: %w", provider, err)
	}
	return nil
}
