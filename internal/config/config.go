package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type HistoryBackend string

const (
	BackendFile   HistoryBackend = "file"
	BackendSQLite HistoryBackend = "sqlite"
)

type Config struct {
	Port int `env:"PORT" envDefault:"3000"`

	// LLM settings
	LLMProvider   LLMProvider `env:"ADVICE_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey  string      `env:"GEMINI_API_KEY"`
	GeminiModel   string      `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiBaseURL string      `env:"GEMINI_BASE_URL"`
	OpenAIAPIKey  string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string      `env:"OPENAI_BASE_URL"`
	OpenAIModel   string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Generation budget, fixed for every request
	Temperature     float32       `env:"ADVICE_TEMPERATURE" envDefault:"0.7"`
	MaxOutputTokens int           `env:"ADVICE_MAX_OUTPUT_TOKENS" envDefault:"500"`
	AdviceTimeout   time.Duration `env:"ADVICE_TIMEOUT" envDefault:"30s"`
	RatePerMinute   int           `env:"ADVICE_RATE_PER_MINUTE" envDefault:"0"`

	// Storage
	HistoryBackend       HistoryBackend `env:"HISTORY_BACKEND" envDefault:"file"`
	HistoryFilePath      string         `env:"HISTORY_FILE_PATH" envDefault:"user_history.json"`
	HistorySQLitePath    string         `env:"HISTORY_SQLITE_PATH" envDefault:"data/history.db"`
	HistoryRetentionDays int            `env:"HISTORY_RETENTION_DAYS" envDefault:"0"`

	// Schedules (UTC cron specs)
	RetentionSchedule string `env:"RETENTION_SCHEDULE" envDefault:"0 3 * * *"`
	ReportSchedule    string `env:"REPORT_SCHEDULE" envDefault:"0 21 * * *"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// New parses the process environment. A missing API key is not an error
// here: requests report it individually so the service stays up.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.LLMProvider = LLMProvider(strings.ToLower(strings.TrimSpace(string(cfg.LLMProvider))))
	cfg.HistoryBackend = HistoryBackend(strings.ToLower(strings.TrimSpace(string(cfg.HistoryBackend))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI, ProviderYandex:
	default:
		return fmt.Errorf("unknown llm provider: %s", c.LLMProvider)
	}
	switch c.HistoryBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown history backend: %s", c.HistoryBackend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("ADVICE_MAX_OUTPUT_TOKENS must be positive, got %d", c.MaxOutputTokens)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("ADVICE_TEMPERATURE must not be negative, got %v", c.Temperature)
	}
	if c.AdviceTimeout <= 0 {
		return fmt.Errorf("ADVICE_TIMEOUT must be positive, got %s", c.AdviceTimeout)
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("ADVICE_RATE_PER_MINUTE must not be negative, got %d", c.RatePerMinute)
	}
	if c.HistoryRetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative, got %d", c.HistoryRetentionDays)
	}
	return nil
}

// HistoryPath returns the location of the configured backend.
func (c *Config) HistoryPath() string {
	if c.HistoryBackend == BackendSQLite {
		return c.HistorySQLitePath
	}
	return c.HistoryFilePath
}
