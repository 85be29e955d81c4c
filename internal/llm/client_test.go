package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-advisor/internal/apperr"
	"health-advisor/internal/config"
)

func TestKeyConfigured(t *testing.T) {
	assert.True(t, KeyConfigured("AIzaSyExample"))
	assert.False(t, KeyConfigured(""))
	assert.False(t, KeyConfigured("  \t"))
	assert.False(t, KeyConfigured("YOUR_ACTUAL_GEMINI_API_KEY_HERE"))
	assert.False(t, KeyConfigured(" your_actual_api_key_here "))
}

func TestKeyStatus(t *testing.T) {
	st := keyStatus(ProviderGemini, "AIzaSyExampleKey")
	assert.Equal(t, KeyStatus{Provider: "gemini", Configured: true, KeyLength: 16, KeyPrefix: "AIzaSyEx..."}, st)

	st = keyStatus(ProviderGemini, "")
	assert.Equal(t, KeyStatus{Provider: "gemini", KeyPrefix: "none"}, st)

	st = keyStatus(ProviderOpenAI, "short")
	assert.Equal(t, "short...", st.KeyPrefix)
}

func TestFactory_CreatesConfiguredProvider(t *testing.T) {
	cfg := &config.Config{
		LLMProvider:     config.ProviderOpenAI,
		OpenAIAPIKey:    "sk-1",
		Temperature:     0.5,
		MaxOutputTokens: 200,
		AdviceTimeout:   5 * time.Second,
	}
	f := NewFactory(cfg, nil)
	assert.Equal(t, Options{Temperature: 0.5, MaxOutputTokens: 200, Timeout: 5 * time.Second}, f.Options())

	c, err := f.CreateClient(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
	assert.True(t, c.Status().Configured)
}

func TestFactory_UnconfiguredProvidersStillBuild(t *testing.T) {
	for _, p := range []config.LLMProvider{config.ProviderGemini, config.ProviderYandex} {
		c, err := NewFactory(&config.Config{LLMProvider: p}, nil).CreateClient(context.Background())
		require.NoError(t, err, p)
		assert.False(t, c.Status().Configured, p)

		_, err = c.Generate(context.Background(), "p")
		assert.Equal(t, apperr.Config, apperr.KindOf(err), p)
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	_, err := NewFactory(&config.Config{LLMProvider: "claude"}, nil).CreateClient(context.Background())
	assert.Error(t, err)
}
