package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-advisor/internal/apperr"
)

type fakeGemini struct {
	srv      *httptest.Server
	calls    atomic.Int32
	lastBody atomic.Value
}

func newFakeGemini(t *testing.T, status int, body string) *fakeGemini {
	t.Helper()
	f := &fakeGemini{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		raw, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(raw))
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newTestGemini(t *testing.T, f *fakeGemini, key string) *GeminiClient {
	t.Helper()
	c, err := NewGemini(context.Background(), GeminiConfig{
		APIKey:  key,
		BaseURL: f.srv.URL,
		Options: DefaultOptions(),
	})
	require.NoError(t, err)
	return c
}

func TestGemini_Success(t *testing.T) {
	f := newFakeGemini(t, http.StatusOK, `{
		"candidates": [{
			"content": {"role": "model", "parts": [{"text": "Cool under running water for 10 minutes."}]},
			"finishReason": "STOP"
		}],
		"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 9, "totalTokenCount": 21}
	}`)
	c := newTestGemini(t, f, "test-key")

	resp, err := c.Generate(context.Background(), "Provide first aid or health advice for: burned my hand")
	require.NoError(t, err)
	assert.Equal(t, "Cool under running water for 10 minutes.", resp.Content)
	assert.Equal(t, 21, resp.TotalTokens)
	assert.EqualValues(t, 1, f.calls.Load())

	var sent struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig struct {
			Temperature     float64 `json:"temperature"`
			MaxOutputTokens int     `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}
	require.NoError(t, json.Unmarshal([]byte(f.lastBody.Load().(string)), &sent))
	require.Len(t, sent.Contents, 1)
	assert.Equal(t, "Provide first aid or health advice for: burned my hand", sent.Contents[0].Parts[0].Text)
	assert.InDelta(t, 0.7, sent.GenerationConfig.Temperature, 1e-6)
	assert.Equal(t, 500, sent.GenerationConfig.MaxOutputTokens)
}

func TestGemini_SkipsEmptyParts(t *testing.T) {
	f := newFakeGemini(t, http.StatusOK, `{"candidates": [{"content": {"parts": [{"text": ""}, {"text": "second"}]}}]}`)
	c := newTestGemini(t, f, "test-key")

	resp, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)
}

func TestGemini_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    apperr.Kind
		message string
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"error": {"code": 401, "message": "Request had invalid authentication credentials.", "status": "UNAUTHENTICATED"}}`,
			kind:    apperr.Auth,
			message: "Invalid API key. Please check your Gemini API key.",
		},
		{
			name:    "invalid key as bad request",
			status:  http.StatusBadRequest,
			body:    `{"error": {"code": 400, "message": "API key not valid. Please pass a valid API key.", "status": "INVALID_ARGUMENT"}}`,
			kind:    apperr.Auth,
			message: "Invalid API key. Please check your Gemini API key.",
		},
		{
			name:    "upstream message",
			status:  http.StatusInternalServerError,
			body:    `{"error": {"code": 500, "message": "An internal error has occurred.", "status": "INTERNAL"}}`,
			kind:    apperr.Upstream,
			message: "An internal error has occurred.",
		},
		{
			name:    "prompt blocked",
			status:  http.StatusOK,
			body:    `{"promptFeedback": {"blockReason": "SAFETY"}}`,
			kind:    apperr.NoContent,
			message: "Advice was blocked by the safety policy (SAFETY)",
		},
		{
			name:    "candidate stopped for safety",
			status:  http.StatusOK,
			body:    `{"candidates": [{"finishReason": "SAFETY"}]}`,
			kind:    apperr.NoContent,
			message: "Advice was blocked by the safety policy (SAFETY)",
		},
		{
			name:    "no candidates",
			status:  http.StatusOK,
			body:    `{"candidates": []}`,
			kind:    apperr.NoContent,
			message: "No advice generated",
		},
		{
			name:    "empty text",
			status:  http.StatusOK,
			body:    `{"candidates": [{"content": {"parts": [{"text": ""}]}, "finishReason": "MAX_TOKENS"}]}`,
			kind:    apperr.NoContent,
			message: "No advice generated",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeGemini(t, tt.status, tt.body)
			c := newTestGemini(t, f, "test-key")

			_, err := c.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err), "err: %v", err)
			assert.Equal(t, tt.message, apperr.MessageOf(err))
			assert.EqualValues(t, 1, f.calls.Load(), "exactly one attempt, no retries")
		})
	}
}

func TestGemini_MissingOrPlaceholderKeyMakesNoCall(t *testing.T) {
	for _, key := range []string{"", "   ", "YOUR_ACTUAL_GEMINI_API_KEY_HERE", "your_actual_api_key_here"} {
		f := newFakeGemini(t, http.StatusOK, `{}`)
		c := newTestGemini(t, f, key)

		_, err := c.Generate(context.Background(), "p")
		assert.Equal(t, apperr.Config, apperr.KindOf(err))
		assert.Zero(t, f.calls.Load())
		assert.False(t, c.Status().Configured)
	}
}

func TestGemini_TimeoutIsUpstream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	opts := DefaultOptions()
	opts.Timeout = 50 * time.Millisecond
	c, err := NewGemini(context.Background(), GeminiConfig{APIKey: "k", BaseURL: srv.URL, Options: opts})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
	assert.Equal(t, "Advice request timed out", apperr.MessageOf(err))
}
