package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/foundry-erp/foundry-erp/internal/analytics"
)

// DashboardWarmupJob pre-populates the analytics caches so the first dashboard
// hit after an invalidation does not pay the query cost.
type DashboardWarmupJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(analyticsSvc *analytics.Service, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{Analytics: analyticsSvc, Logger: logger}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	if err := j.Analytics.Warm(ctx); err != nil {
		logger.Error("dashboard warmup", slog.Any("error", err))
		return err
	}
	logger.Info("dashboard warmup complete", slog.Duration("duration", time.Since(start)))
	return nil
}
