package http

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/macdee501/web-grocery-delivery-version-1/pkg/health"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/middleware"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	ServiceName string
	Logger      *slog.Logger
	Health      *health.Handler
	Cart        *CartHandler
	Checkout    *CheckoutHandler
	Order       *OrderHandler
	Catalog     *CatalogHandler
}

// NewRouter assembles the chi router with the standard middleware chain,
// health endpoints, metrics, and all API routes under /api/v1.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/healthz", cfg.Health.LivenessHandler())
	r.Get("/readyz", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Catalog browsing does not require identity.
		cfg.Catalog.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(UserIDFromHeader)
			cfg.Cart.RegisterRoutes(r)
			cfg.Checkout.RegisterRoutes(r)
			cfg.Order.RegisterRoutes(r)
		})
	})

	return r
}
