package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"health-advisor/internal/advice"
	"health-advisor/internal/api"
	"health-advisor/internal/config"
	"health-advisor/internal/history"
	"health-advisor/internal/llm"
	"health-advisor/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the maintenance scheduler",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn("failed to close history backend", zap.Error(err))
		}
	}()
	store := history.NewStore(backend, log)

	client, err := llm.NewFactory(cfg, log).CreateClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	st := client.Status()
	if !st.Configured {
		log.Warn("advice provider key is not configured; advice requests will fail",
			zap.String("provider", st.Provider))
	}
	log.Info("configuration loaded",
		zap.String("provider", st.Provider),
		zap.String("history_backend", string(cfg.HistoryBackend)),
		zap.String("history_path", cfg.HistoryPath()))

	sched, err := newScheduler(cfg, store, log)
	if err != nil {
		return err
	}

	srv := api.NewServer(advice.NewService(store, client, log), api.Options{
		Port:          cfg.Port,
		RatePerMinute: cfg.RatePerMinute,
		AdviceTimeout: cfg.AdviceTimeout,
	}, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sched.Stop()
		return srv.Stop()
	})
	sched.Start()
	log.Info("background jobs", zap.Bool("scheduler_running", sched.IsRunning()))

	return g.Wait()
}

func newScheduler(cfg *config.Config, store *history.Store, log *zap.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(log)
	if cfg.HistoryRetentionDays > 0 && cfg.RetentionSchedule != "" {
		job := scheduler.RetentionJob(store, cfg.HistoryRetentionDays, time.Now, log)
		if err := s.Add("history-retention", cfg.RetentionSchedule, job); err != nil {
			s.Stop()
			return nil, err
		}
	}
	if cfg.ReportSchedule != "" {
		if err := s.Add("daily-report", cfg.ReportSchedule, scheduler.ReportJob(store, time.Now, log)); err != nil {
			s.Stop()
			return nil, err
		}
	}
	return s, nil
}
