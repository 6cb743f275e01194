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
	"github.com/shopspring/decimal"

	"github.com/voyageos/voyageos/internal/app"
	"github.com/voyageos/voyageos/internal/auth"
	"github.com/voyageos/voyageos/internal/billing/invoices"
	"github.com/voyageos/voyageos/internal/dashboard"
	"github.com/voyageos/voyageos/internal/documents"
	"github.com/voyageos/voyageos/internal/masterdata/clients"
	"github.com/voyageos/voyageos/internal/masterdata/locations"
	"github.com/voyageos/voyageos/internal/masterdata/services"
	"github.com/voyageos/voyageos/internal/masterdata/vendors"
	"github.com/voyageos/voyageos/internal/observability"
	"github.com/voyageos/voyageos/internal/platform/cache"
	"github.com/voyageos/voyageos/internal/platform/db"
	"github.com/voyageos/voyageos/internal/sales/quotations"
	"github.com/voyageos/voyageos/internal/shared"
	"github.com/voyageos/voyageos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	if cfg.AutoMigrate {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}
	pool, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func(c *redis.Client) {
			if err := c.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}(redisClient)
	}

	metrics := observability.NewMetrics()
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() { _ = inspector.Close() }()

	renderer, err := app.NewDocumentRenderer(ctx, cfg, logger)
	if err != nil {
		logger.Error("init document renderer", slog.Any("error", err))
		os.Exit(1)
	}
	genOpts := []documents.GeneratorOption{documents.WithRecorder(metrics), documents.WithLogger(logger)}
	if cfg.ArchiveEnabled() {
		genOpts = append(genOpts, documents.WithArchiver(jobClient))
	}
	generator := documents.NewGenerator(renderer, genOpts...)

	dashboardService := dashboard.NewService(
		dashboard.NewRepository(pool),
		cache.NewVersioned(redisClient, "voyageos:dashboard", cfg.DashboardTTL),
		logger,
	)
	auditor := shared.NewAuditLogger(pool)

	invoiceService := invoices.NewService(invoices.NewRepository(pool), generator, invoices.Options{
		CompanyName: cfg.CompanyName,
		DueDays:     cfg.InvoiceDueDays,
		Auditor:     auditor,
		Invalidator: dashboardService,
		Recorder:    metrics,
		Logger:      logger,
	})
	quotationService := quotations.NewService(quotations.NewRepository(pool), generator, quotations.Options{
		InvoiceDueDays: cfg.InvoiceDueDays,
		Auditor:        auditor,
		Invalidator:    dashboardService,
		Recorder:       metrics,
		Logger:         logger,
	})

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("init token issuer", slog.Any("error", err))
		os.Exit(1)
	}
	authService := auth.NewService(auth.NewRepository(pool), issuer, logger)
	bootstrap, err := auth.ParseBootstrapUsers(cfg.BootstrapUsers)
	if err != nil {
		logger.Error("parse bootstrap users", slog.Any("error", err))
		os.Exit(1)
	}
	if err := authService.Bootstrap(ctx, bootstrap); err != nil {
		logger.Error("bootstrap users", slog.Any("error", err))
		os.Exit(1)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Metrics:           metrics,
		AuthHandler:       auth.NewHandler(logger, authService),
		AuthMiddleware:    auth.NewMiddleware(issuer),
		LocationsHandler:  locations.NewHandler(logger, locations.NewService(locations.NewRepository(pool))),
		ClientsHandler:    clients.NewHandler(logger, clients.NewService(clients.NewRepository(pool))),
		VendorsHandler:    vendors.NewHandler(logger, vendors.NewService(vendors.NewRepository(pool))),
		ServicesHandler:   services.NewHandler(logger, services.NewManager(services.NewRepository(pool))),
		QuotationsHandler: quotations.NewHandler(logger, quotationService),
		InvoicesHandler:   invoices.NewHandler(logger, invoiceService),
		DashboardHandler:  dashboard.NewHandler(logger, dashboardService),
		JobHandler:        jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("pdf_renderer", renderer.Name()))
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
