// Package scheduler runs periodic maintenance of the history store.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs named jobs on cron specs evaluated in UTC.
type Scheduler struct {
	running atomic.Bool
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With(zap.String("component", "scheduler")),
	}
}

// Add registers job under spec. Failures are logged; the job stays scheduled.
func (s *Scheduler) Add(name, spec string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			s.log.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() {
	if len(s.cron.Entries()) == 0 {
		s.log.Info("no jobs configured, scheduler idle")
		return
	}
	s.cron.Start()
	s.running.Store(true)
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs, then cancels the job context.
func (s *Scheduler) Stop() {
	s.running.Store(false)
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Info("scheduler stopped")
}

// IsRunning reports whether Start launched the cron loop and Stop has not
// been called since.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}
