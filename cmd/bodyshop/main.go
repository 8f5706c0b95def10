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

	"github.com/odyssey-erp/bodyshop/cmd/bodyshop/cli"
	"github.com/odyssey-erp/bodyshop/internal/app"
	"github.com/odyssey-erp/bodyshop/internal/observability"
	"github.com/odyssey-erp/bodyshop/internal/platform/cache"
	"github.com/odyssey-erp/bodyshop/internal/platform/db"
	"github.com/odyssey-erp/bodyshop/internal/quoting/catalog"
	"github.com/odyssey-erp/bodyshop/internal/quoting/quotations"
	"github.com/odyssey-erp/bodyshop/internal/quoting/rates"
	quotingShared "github.com/odyssey-erp/bodyshop/internal/quoting/shared"
	"github.com/odyssey-erp/bodyshop/internal/shared"
	"github.com/odyssey-erp/bodyshop/jobs"
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

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobs(ctx, cfg, os.Args[2:]))
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, 0)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	metrics := observability.NewMetrics()

	rateCache := cache.NewVersioned(redisClient, "rates", cfg.RateCacheTTL)
	catalogCache := cache.NewVersioned(redisClient, "catalog", cfg.CatalogCacheTTL)

	ratesRepo := rates.NewRepository(dbpool)
	resolver := rates.NewResolver(ratesRepo, rateCache, metrics)
	ratesService := rates.NewService(ratesRepo, resolver, logger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	if _, err := jobClient.EnqueueRateWarmup(ctx, "startup"); err != nil {
		logger.Warn("enqueue rate warmup", slog.Any("error", err))
	}

	quotationService := quotations.NewService(quotations.NewRepository(dbpool), resolver, quotations.ServiceConfig{
		Audit:       shared.NewAuditLogger(dbpool),
		Idempotency: shared.NewIdempotencyStore(dbpool),
		Publisher:   jobClient,
		Observer:    metrics,
		Formatter:   quotingShared.NewFormatter(cfg.CurrencySymbol, cfg.CurrencyLocale),
		Logger:      logger,
	})
	catalogService := catalog.NewService(catalog.NewRepository(dbpool), catalogCache, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		QuotationsHandler: quotations.NewHandler(logger, quotationService),
		RatesHandler:      rates.NewHandler(logger, ratesService),
		CatalogHandler:    catalog.NewHandler(logger, catalogService),
		JobHandler:        jobs.NewHandler(inspector, logger),
		Metrics:           metrics,
		Readiness: map[string]app.Pinger{
			"postgres": app.PingFunc(dbpool.Ping),
			"redis": app.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		},
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

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		slog.Default().Error("init jobs cli", slog.Any("error", err))
		return 1
	}
	defer func() { _ = jobsCLI.Close() }()
	return jobsCLI.Command(ctx, args, os.Stdout, os.Stderr)
}
