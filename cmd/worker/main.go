package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/voyageos/voyageos/internal/app"
	"github.com/voyageos/voyageos/internal/billing/invoices"
	"github.com/voyageos/voyageos/internal/dashboard"
	"github.com/voyageos/voyageos/internal/documents"
	jobmetrics "github.com/voyageos/voyageos/internal/jobs"
	"github.com/voyageos/voyageos/internal/platform/cache"
	"github.com/voyageos/voyageos/internal/platform/db"
	"github.com/voyageos/voyageos/internal/shared"
	"github.com/voyageos/voyageos/jobs"
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
	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))

	pool, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func(c *redis.Client) { _ = c.Close() }(redisClient)
	}

	// The sweep only touches invoice rows; it never renders documents.
	dashboardService := dashboard.NewService(
		dashboard.NewRepository(pool),
		cache.NewVersioned(redisClient, "voyageos:dashboard", cfg.DashboardTTL),
		logger,
	)
	invoiceService := invoices.NewService(invoices.NewRepository(pool), nil, invoices.Options{
		DueDays:     cfg.InvoiceDueDays,
		Invalidator: dashboardService,
		Logger:      logger,
	})

	metrics := jobmetrics.NewMetrics(nil)
	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskOverdueSweep, Handler: jobs.NewOverdueSweepJob(invoiceService, logger, metrics).Handle},
		{Type: jobs.TaskIdempotencyCleanup, Handler: jobs.NewIdempotencyCleanupJob(shared.NewIdempotencyJanitor(pool), logger, metrics).Handle},
	}
	if cfg.ArchiveEnabled() {
		archive, err := documents.NewS3Archive(ctx, cfg.ArchiveConfig())
		if err != nil {
			logger.Error("init document archive", slog.Any("error", err))
			os.Exit(1)
		}
		handlers = append(handlers, jobs.TaskHandler{
			Type:    jobs.TaskDocumentArchive,
			Handler: jobs.NewDocumentArchiveJob(archive, logger, metrics).Handle,
		})
	}

	cleanupTask, err := jobs.NewIdempotencyCleanupTask(jobs.DefaultIdempotencyRetention)
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers:  handlers,
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OverdueSweepCron, Task: jobs.NewOverdueSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	inspector := asynq.NewInspector(redisOpts)
	defer func() { _ = inspector.Close() }()
	opsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           jobs.NewOpsRouter(metrics, inspector, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = opsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker started", slog.String("overdue_cron", cfg.OverdueSweepCron), slog.Bool("archive", cfg.ArchiveEnabled()),
		slog.String("metrics_addr", cfg.WorkerMetricsAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
