package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/jobs"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Fields:      map[string]any{"env": cfg.App.Env},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "queue", cfg.Jobs.Queue)

	if !cfg.Redis.Enabled() {
		logg.Warn(ctx, "redis is not configured, nothing to consume")
		return
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	productSvc, err := products.NewService(products.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "products service", err)

	receipts, err := jobs.NewReceiptHandler(orders.NewRepository(dbClient.DB()), logg)
	requireResource(ctx, logg, "receipt handler", err)

	imports, err := jobs.NewCatalogImportHandler(productSvc, logg)
	requireResource(ctx, logg, "catalog import handler", err)

	reg := prometheus.NewRegistry()
	worker, err := jobs.NewWorker(jobs.WorkerParams{
		Logger:       logg,
		Store:        redisClient,
		Registry:     jobs.NewRegistry(receipts, imports),
		Metrics:      metrics.NewJobMetrics(reg),
		Queue:        cfg.Jobs.Queue,
		MaxAttempts:  cfg.Jobs.MaxAttempts,
		BackoffBase:  cfg.Jobs.BackoffBase,
		PollTimeout:  cfg.Jobs.PollTimeout,
		PromoteEvery: cfg.Jobs.PromoteEvery,
	})
	requireResource(ctx, logg, "job worker", err)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()

	logg.Info(ctx, "worker ready")
	runErr := worker.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	closeErr := multierr.Combine(
		metricsServer.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if err := multierr.Append(runErr, closeErr); err != nil {
		logg.Error(shutdownCtx, "worker stopped with errors", err)
		os.Exit(1)
	}
	logg.Info(shutdownCtx, "worker stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
