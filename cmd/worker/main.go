package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/foundry-erp/foundry-erp/internal/analytics"
	"github.com/foundry-erp/foundry-erp/internal/app"
	"github.com/foundry-erp/foundry-erp/internal/platform/cache"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/shared"
	"github.com/foundry-erp/foundry-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Redis is a hard dependency here: asynq queues live in it.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	analyticsRepo := analytics.NewRepository(pool)
	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)

	mailer := jobs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, logger)
	reminderJob := jobs.NewReminderScanJob(pool, client, logger)
	warmupJob := jobs.NewDashboardWarmupJob(analyticsService, logger)
	cleanupJob := jobs.NewIdempotencyCleanupJob(shared.NewIdempotencyStore(pool), cfg.IdempotencyRetention, logger)

	var cron []jobs.CronRegistration
	if cfg.ReminderCron != "" {
		reminderTask, err := jobs.NewReminderScanTask(jobs.ReminderScanPayload{MinDaysOverdue: 1})
		if err != nil {
			logger.Error("build reminder task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec: cfg.ReminderCron, Task: reminderTask,
			Options: []asynq.Option{asynq.MaxRetry(3)},
		})
	}
	if cfg.WarmupCron != "" {
		cron = append(cron, jobs.CronRegistration{
			Spec: cfg.WarmupCron, Task: jobs.NewDashboardWarmupTask(),
			Options: []asynq.Option{asynq.MaxRetry(1)},
		})
	}
	cron = append(cron, jobs.CronRegistration{
		Spec: "0 3 * * *", Task: jobs.NewIdempotencyCleanupTask(),
		Options: []asynq.Option{asynq.MaxRetry(1)},
	})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailer.Handle},
			{Type: jobs.TaskTypeReminderScan, Handler: reminderJob.Handle},
			{Type: jobs.TaskTypeDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskTypeIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
