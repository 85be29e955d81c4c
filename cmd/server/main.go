package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"health-advisor/internal/config"
	"health-advisor/internal/logging"
	"health-advisor/internal/storage"
)

var (
	envFile  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "health-advisor",
		Short:         "HTTP service answering health questions with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "overrides LOG_LEVEL")

	root.AddCommand(newServeCmd(), newKeycheckCmd(), newHistoryCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the dotenv file (if any) and then the environment.
// Variables already set in the process win over the file.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel, cfg.LogFormat)
}

func openBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.HistoryBackend {
	case config.BackendSQLite:
		return storage.NewSQLiteBackend(cfg.HistorySQLitePath)
	default:
		return storage.NewFileBackend(cfg.HistoryFilePath)
	}
}
