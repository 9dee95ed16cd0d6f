package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/techstore/internal/service"
	"github.com/utafrali/techstore/pkg/health"
	"github.com/utafrali/techstore/pkg/middleware"
)

const serviceName = "storefront"

// RouterConfig holds the HTTP-level settings of the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	// CatalogCacheMaxAge is the Cache-Control max-age for catalog and info
	// responses, in seconds. Zero disables caching headers.
	CatalogCacheMaxAge int
	PprofCIDRs         []string
	// CartRateLimitRPS is the per-session request rate on cart and checkout
	// routes. Zero disables limiting.
	CartRateLimitRPS   float64
	CartRateLimitBurst int
}

// Services bundles the services the router exposes.
type Services struct {
	Cart       *service.CartService
	Catalog    *service.CatalogService
	Storefront *service.StorefrontService
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svcs Services,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins)))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	catalogHandler := NewCatalogHandler(svcs.Catalog, logger)
	cartHandler := NewCartHandler(svcs.Cart, logger)
	storefrontHandler := NewStorefrontHandler(svcs.Storefront, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogCacheMaxAge))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{id}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/info/delivery", storefrontHandler.Delivery)
			r.Get("/info/contacts", storefrontHandler.Contacts)
		})

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionID)
			r.Use(middleware.RateLimit(cfg.CartRateLimitRPS, cfg.CartRateLimitBurst, middleware.SessionOrIPKey, logger))

			r.Get("/cart", cartHandler.GetCart)
			r.Delete("/cart", cartHandler.ClearCart)
			r.Post("/cart/items", cartHandler.AddItem)
			r.Patch("/cart/items/{productId}", cartHandler.UpdateQuantity)
			r.Delete("/cart/items/{productId}", cartHandler.RemoveItem)

			r.Get("/checkout", storefrontHandler.Checkout)
		})
	})

	return r
}
