package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"health-advisor/internal/analytics"
	"health-advisor/internal/storage"
)

type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

type SnapshotLoader interface {
	Load(ctx context.Context) storage.Snapshot
}

// RetentionJob deletes interactions older than days.
func RetentionJob(store Pruner, days int, now func() time.Time, log *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		cutoff := now().UTC().AddDate(0, 0, -days)
		removed, err := store.Prune(ctx, cutoff)
		if err != nil {
			return err
		}
		log.Info("history retention applied",
			zap.Int("removed", removed),
			zap.Time("cutoff", cutoff))
		return nil
	}
}

// ReportJob logs today's (UTC) usage statistics.
func ReportJob(store SnapshotLoader, now func() time.Time, log *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		stats := analytics.AnalyzeDay(store.Load(ctx), now().UTC())
		log.Info("daily usage report",
			zap.String("date", stats.Date),
			zap.Int("interactions", stats.TotalInteractions),
			zap.Int("unique_users", stats.UniqueUsers),
			zap.Any("per_user", stats.UserStats),
			zap.String("summary", stats.Summary()))
		return nil
	}
}
