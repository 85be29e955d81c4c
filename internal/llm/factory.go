package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"health-advisor/internal/config"
)

// Factory creates advice clients from the process configuration.
type Factory struct {
	cfg *config.Config
	log *zap.Logger
}

func NewFactory(cfg *config.Config, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{cfg: cfg, log: log}
}

func (f *Factory) Options() Options {
	return Options{
		Temperature:     f.cfg.Temperature,
		MaxOutputTokens: f.cfg.MaxOutputTokens,
		Timeout:         f.cfg.AdviceTimeout,
	}
}

func (f *Factory) CreateClient(ctx context.Context) (Client, error) {
	switch strings.ToLower(string(f.cfg.LLMProvider)) {
	case ProviderGemini:
		return NewGemini(ctx, GeminiConfig{
			APIKey:  f.cfg.GeminiAPIKey,
			Model:   f.cfg.GeminiModel,
			BaseURL: f.cfg.GeminiBaseURL,
			Options: f.Options(),
		})
	case ProviderOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:   f.cfg.OpenAIAPIKey,
			BaseURL:  f.cfg.OpenAIBaseURL,
			Model:    f.cfg.OpenAIModel,
			Referrer: f.cfg.OpenRouterReferrer,
			Title:    f.cfg.OpenRouterTitle,
			Options:  f.Options(),
		}), nil
	case ProviderYandex:
		return NewYandex(f.cfg.YandexOAuthToken, f.cfg.YandexFolderID, f.Options(), f.log)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", f.cfg.LLMProvider)
	}
}
