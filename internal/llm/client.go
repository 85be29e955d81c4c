package llm

import (
	"context"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Keys shipped in sample configs; treated as missing.
var placeholderKeys = map[string]bool{
	"YOUR_ACTUAL_GEMINI_API_KEY_HERE": true,
	"your_actual_api_key_here":        true,
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// KeyStatus describes the credentials of a provider without exposing them.
type KeyStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"keyConfigured"`
	KeyLength  int    `json:"keyLength"`
	KeyPrefix  string `json:"keyPrefix"`
}

// Client makes exactly one generation request per Generate call.
// Errors are *apperr.Error values of kind Config, Auth, Upstream or NoContent.
type Client interface {
	Generate(ctx context.Context, prompt string) (Response, error)
	Status() KeyStatus
}

// Options fixes the generation budget for every call of a client.
type Options struct {
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
}

func DefaultOptions() Options {
	return Options{Temperature: 0.7, MaxOutputTokens: 500, Timeout: 30 * time.Second}
}

// KeyConfigured reports whether key is present and not a sample placeholder.
func KeyConfigured(key string) bool {
	k := strings.TrimSpace(key)
	return k != "" && !placeholderKeys[k]
}

func keyStatus(provider, key string) KeyStatus {
	st := KeyStatus{Provider: provider, KeyLength: len(key), KeyPrefix: "none"}
	st.Configured = KeyConfigured(key)
	if key != "" {
		p := key
		if len(p) > 8 {
			p = p[:8]
		}
		st.KeyPrefix = p + "..."
	}
	return st
}

// withTimeout bounds ctx by the client's timeout.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
