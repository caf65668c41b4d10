package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/foundry-erp/foundry-erp/internal/analytics"
	"github.com/foundry-erp/foundry-erp/internal/app"
	"github.com/foundry-erp/foundry-erp/internal/invoices"
	"github.com/foundry-erp/foundry-erp/internal/ledger"
	"github.com/foundry-erp/foundry-erp/internal/parties"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/shared"
	"github.com/foundry-erp/foundry-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	partiesRepo := parties.NewRepository(dbpool)
	partiesService := parties.NewService(partiesRepo)
	partiesHandler := parties.NewHandler(logger, partiesService)

	invoicesRepo := invoices.NewRepository(dbpool)
	invoicesService := invoices.NewService(invoicesRepo, partiesService)
	invoicesHandler := invoices.NewHandler(logger, invoicesService)

	ledgerCache := analytics.NewCache(redisClient, cfg.CacheTTL)
	if err := ledgerCache.ListenForInvalidation(ctx, logger); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(invoices.NewSource(invoicesRepo), ledgerRepo, ledgerCache)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, ledgerRepo, idempotencyStore)

	analyticsRepo := analytics.NewRepository(dbpool)
	analyticsService := analytics.NewService(analyticsRepo, ledgerCache)
	analyticsHandler := analytics.NewHandler(logger, analyticsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		PartiesHandler:   partiesHandler,
		InvoicesHandler:  invoicesHandler,
		LedgerHandler:    ledgerHandler,
		AnalyticsHandler: analyticsHandler,
		JobHandler:       jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
