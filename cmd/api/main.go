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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/jobs"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/internal/stores"
	"github.com/angelmondragon/storefront-backend/internal/stripepay"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/security"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

const stripeEventTTL = 72 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Fields:      map[string]any{"env": cfg.App.Env},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	deps := routes.Dependencies{DB: dbClient}

	var redisClient *redis.Client
	var queue *jobs.Queue
	var guard *stripepay.EventGuard
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)

		queue, err = jobs.NewQueue(redisClient, cfg.Jobs.Queue)
		requireResource(ctx, logg, "job queue", err)

		guard, err = stripepay.NewEventGuard(redisClient, stripeEventTTL, "stripe-events")
		requireResource(ctx, logg, "stripe event guard", err)

		deps.Redis = redisClient
		deps.Idempotency = redisClient
		deps.Jobs = queue
	} else {
		logg.Warn(ctx, "redis disabled: idempotency and background jobs are off")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	gatewayMetrics := metrics.NewGatewayMetrics(reg)
	deps.Gatherer = reg

	cipher, err := security.NewCredentialCipher(ctx, cfg.Security.EncryptionSecret, logg)
	requireResource(ctx, logg, "credential cipher", err)

	stripeFactory, err := pkgstripe.NewFactory(cfg.Stripe, logg)
	requireResource(ctx, logg, "stripe factory", err)

	conn := dbClient.DB()
	storeRepo := stores.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	paymentRepo := payments.NewRepository(conn)
	deps.StoreLookup = storeRepo

	deps.Stores, err = stores.NewService(storeRepo, cipher)
	requireResource(ctx, logg, "stores service", err)

	deps.Customers, err = customers.NewService(customerRepo)
	requireResource(ctx, logg, "customers service", err)

	deps.Products, err = products.NewService(productRepo)
	requireResource(ctx, logg, "products service", err)

	couponSvc, err := coupons.NewService(coupons.NewRepository(conn))
	requireResource(ctx, logg, "coupons service", err)
	deps.Coupons = couponSvc

	shippingSvc, err := shipping.NewService(shipping.ServiceParams{
		Repo:     shipping.NewRepository(conn),
		Orders:   orderRepo,
		Carriers: shipping.DefaultCarriers(gatewayMetrics),
		Logger:   logg,
	})
	requireResource(ctx, logg, "shipping service", err)
	deps.Shipping = shippingSvc

	deps.Orders, err = orders.NewService(orders.ServiceParams{
		Repo:      orderRepo,
		Customers: customerRepo,
		Products:  productRepo,
		Coupons:   couponSvc,
		Shipments: shippingSvc,
		Logger:    logg,
	})
	requireResource(ctx, logg, "orders service", err)

	paymentParams := payments.ServiceParams{
		Repo:     paymentRepo,
		Orders:   orderRepo,
		Gateways: payments.DefaultRegistry(gatewayMetrics),
		Logger:   logg,
		Currency: cfg.Stripe.DefaultCurrency,
	}
	if queue != nil {
		paymentParams.Jobs = queue
	}
	deps.Payments, err = payments.NewService(paymentParams)
	requireResource(ctx, logg, "payments service", err)

	stripeParams := stripepay.ServiceParams{
		Stores:          storeRepo,
		Cipher:          cipher,
		Factory:         stripeFactory,
		Orders:          orderRepo,
		Payments:        paymentRepo,
		Tx:              dbClient,
		Logger:          logg,
		DefaultCurrency: cfg.Stripe.DefaultCurrency,
	}
	if guard != nil {
		stripeParams.Guard = guard
	}
	deps.Stripe, err = stripepay.NewService(stripeParams)
	requireResource(ctx, logg, "stripe service", err)

	addr := ":" + cfg.App.Port
	ctx = logg.WithField(ctx, "addr", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	closeErr := server.Shutdown(shutdownCtx)
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(shutdownCtx, "api shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(shutdownCtx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
