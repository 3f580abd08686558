package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/webhooks"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/internal/stores"
	"github.com/angelmondragon/storefront-backend/internal/stripepay"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

type storeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Dependencies are the collaborators the HTTP surface is built from. Redis,
// Jobs and Gatherer are optional.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	Jobs        controllers.JobEnqueuer
	Gatherer    prometheus.Gatherer
	StoreLookup storeFinder

	Stores    stores.Service
	Customers customers.Service
	Products  products.Service
	Coupons   coupons.Service
	Orders    orders.Service
	Payments  payments.Service
	Stripe    stripepay.Service
	Shipping  shipping.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	readiness := map[string]controllers.Pinger{"db": deps.DB, "redis": nil}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, readiness, logg))

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Post("/payments/webhook/{storeId}", webhookcontrollers.StripeWebhook(deps.Stripe, logg))

		v1.Group(func(private chi.Router) {
			private.Use(
				middleware.Auth(cfg.JWT, logg),
				middleware.StoreContext(deps.StoreLookup, logg),
				middleware.Idempotency(deps.Idempotency, middleware.IdempotencyOptions{
					LockTTL:     cfg.Idempotency.LockTTL,
					ResponseTTL: cfg.Idempotency.ResponseTTL,
				}, logg),
			)

			private.Route("/stores/me", func(s chi.Router) {
				s.Get("/", controllers.StoreGet(deps.Stores, logg))
				s.Put("/stripe", controllers.StoreConfigureStripe(deps.Stores, logg))
				s.Post("/stripe/confirm", controllers.StoreConfirmStripe(deps.Stores, logg))
			})

			private.Route("/customers", func(c chi.Router) {
				c.Post("/", controllers.CustomerCreate(deps.Customers, logg))
				c.Get("/", controllers.CustomerList(deps.Customers, logg))
				c.Get("/{id}", controllers.CustomerGet(deps.Customers, logg))
				c.Delete("/{id}", controllers.CustomerDelete(deps.Customers, logg))
			})

			private.Route("/products", func(p chi.Router) {
				p.Post("/", controllers.ProductCreate(deps.Products, logg))
				p.Get("/", controllers.ProductList(deps.Products, logg))
				p.Post("/import", controllers.ProductImport(deps.Jobs, logg))
				p.Get("/{id}", controllers.ProductGet(deps.Products, logg))
				p.Delete("/{id}", controllers.ProductDelete(deps.Products, logg))
			})

			private.Route("/coupons", func(c chi.Router) {
				c.Post("/", controllers.CouponCreate(deps.Coupons, logg))
				c.Get("/", controllers.CouponList(deps.Coupons, logg))
				c.Get("/validate/{code}", controllers.CouponValidate(deps.Coupons, logg))
				c.Get("/{id}", controllers.CouponGet(deps.Coupons, logg))
				c.Patch("/{id}", controllers.CouponUpdate(deps.Coupons, logg))
				c.Delete("/{id}", controllers.CouponDelete(deps.Coupons, logg))
			})

			private.Route("/orders", func(o chi.Router) {
				o.Post("/", controllers.OrderCreate(deps.Orders, logg))
				o.Get("/", controllers.OrderList(deps.Orders, logg))
				o.Get("/{id}", controllers.OrderGet(deps.Orders, logg))
				o.Patch("/{id}", controllers.OrderUpdate(deps.Orders, logg))
				o.Post("/{id}/cancel", controllers.OrderCancel(deps.Orders, logg))
				o.Get("/{id}/payments", controllers.OrderPayments(deps.Payments, logg))
				o.Get("/{id}/shipments", controllers.OrderShipments(deps.Shipping, logg))
			})

			private.Route("/payments", func(p chi.Router) {
				p.Post("/process", controllers.PaymentProcess(deps.Payments, logg))
				p.Post("/create-intent", controllers.PaymentCreateIntent(deps.Stripe, logg))
				p.Post("/{id}/refund", controllers.PaymentRefund(deps.Payments, logg))
			})

			private.Route("/shipping", func(s chi.Router) {
				s.Post("/", controllers.ShipmentCreate(deps.Shipping, logg))
				s.Post("/tracking/update", controllers.ShipmentTrackingUpdate(deps.Shipping, logg))
				s.Get("/track/{trackingNumber}", controllers.ShipmentTrack(deps.Shipping, logg))
				s.Patch("/{id}", controllers.ShipmentUpdateStatus(deps.Shipping, logg))
				s.Post("/{id}/cancel", controllers.ShipmentCancel(deps.Shipping, logg))
			})
		})
	})

	return r
}
