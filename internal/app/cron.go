package app

import (
	"context"
	"time"

	pkgcron "github.com/bhutan-travel/core/internal/pkg/cron"
	sessionpkg "github.com/bhutan-travel/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionRetention = 30 * 24 * time.Hour

// registerCronJobs registers the scheduled maintenance jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, logger *zap.Logger) {
	cronLogger := logger.Named("cron")

	sched.Register(pkgcron.Job{
		Name:     "purge_sessions",
		Interval: 24 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := sessionpkg.Purge(ctx, db, time.Now().Add(-sessionRetention))
			if err != nil {
				return err
			}
			if n > 0 {
				cronLogger.Info("purged old sessions", zap.Int64("count", n))
			}
			return nil
		},
	})
}
