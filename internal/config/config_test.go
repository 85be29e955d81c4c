package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-6)
	assert.Equal(t, 500, cfg.MaxOutputTokens)
	assert.Equal(t, 30*time.Second, cfg.AdviceTimeout)
	assert.Equal(t, BackendFile, cfg.HistoryBackend)
	assert.Equal(t, "user_history.json", cfg.HistoryPath())
	assert.Equal(t, 0, cfg.RatePerMinute)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ADVICE_PROVIDER", " OpenAI ")
	t.Setenv("HISTORY_BACKEND", "sqlite")
	t.Setenv("HISTORY_SQLITE_PATH", "/tmp/h.db")
	t.Setenv("ADVICE_TIMEOUT", "12s")
	t.Setenv("ADVICE_RATE_PER_MINUTE", "30")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "/tmp/h.db", cfg.HistoryPath())
	assert.Equal(t, 12*time.Second, cfg.AdviceTimeout)
	assert.Equal(t, 30, cfg.RatePerMinute)
}

func TestNew_MissingKeyIsNotAnError(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := New()
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:            3000,
			LLMProvider:     ProviderGemini,
			HistoryBackend:  BackendFile,
			MaxOutputTokens: 500,
			Temperature:     0.7,
			AdviceTimeout:   time.Second,
		}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.LLMProvider = "claude" }},
		{"unknown backend", func(c *Config) { c.HistoryBackend = "redis" }},
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"zero tokens", func(c *Config) { c.MaxOutputTokens = 0 }},
		{"negative temperature", func(c *Config) { c.Temperature = -1 }},
		{"zero timeout", func(c *Config) { c.AdviceTimeout = 0 }},
		{"negative rate", func(c *Config) { c.RatePerMinute = -1 }},
		{"negative retention", func(c *Config) { c.HistoryRetentionDays = -3 }},
	}
	require.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
