package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshcart/storefront/api/controllers"
	"github.com/freshcart/storefront/api/middleware"
	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/checkout"
	"github.com/freshcart/storefront/internal/shopping"
	"github.com/freshcart/storefront/pkg/config"
	"github.com/freshcart/storefront/pkg/kvstore"
	"github.com/freshcart/storefront/pkg/logger"
	"github.com/freshcart/storefront/pkg/metrics"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Catalog     *catalog.Service
	Registry    *shopping.Registry
	Policy      checkout.Policy
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	Pingers     map[string]kvstore.Pinger
	// Idempotency stores replayable responses for retried cart additions.
	Idempotency kvstore.ExpiringStore
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}
	r.Use(middleware.CORS(cfg.HTTP.CORSAllowedOrigins))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	shoppingDeps := controllers.ShoppingDeps{
		Registry: deps.Registry,
		Catalog:  deps.Catalog,
		Policy:   deps.Policy,
		Logger:   logg,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Catalog, logg))
			r.Get("/facets", controllers.ProductsFacets(deps.Catalog, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Profile(logg))
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.Middleware(logg))
			}
			if deps.Idempotency != nil {
				r.Use(middleware.Idempotency(deps.Idempotency, cfg.Store.Namespace, logg))
			}

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(shoppingDeps))
				r.Delete("/", controllers.CartClear(shoppingDeps))
				r.Post("/items", controllers.CartAddItem(shoppingDeps))
				r.Patch("/items/{productId}", controllers.CartUpdateItem(shoppingDeps))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(shoppingDeps))
			})
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(shoppingDeps))
				r.Post("/items", controllers.WishlistAddItem(shoppingDeps))
				r.Delete("/items/{productId}", controllers.WishlistRemoveItem(shoppingDeps))
				r.Post("/items/{productId}/move-to-cart", controllers.WishlistMoveToCart(shoppingDeps))
			})
			r.Get("/checkout/quote", controllers.CheckoutQuote(shoppingDeps))
		})
	})

	return r
}
