package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hendrawijaya/shopfront-backend/api/controllers"
	"github.com/hendrawijaya/shopfront-backend/api/middleware"
	"github.com/hendrawijaya/shopfront-backend/internal/catalog"
	"github.com/hendrawijaya/shopfront-backend/pkg/config"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      controllers.Pinger
	Redis   controllers.Pinger
	Cart    controllers.CartStore
	Catalog *catalog.Service

	Checkout controllers.CheckoutCommitter
	Orders   controllers.OrderReader
	Admin    controllers.AdminOrderService

	Metrics prometheus.Gatherer
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, logg))
			r.Get("/{slug}", controllers.ProductDetail(deps.Catalog, logg))
		})
		r.Get("/categories", controllers.CategoryList(deps.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Cart, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartView(deps.Cart, logg))
				r.Post("/", controllers.CartAdd(deps.Cart, deps.Catalog, logg))
				r.Patch("/{productId}", controllers.CartUpdate(deps.Cart, logg))
				r.Delete("/{productId}", controllers.CartRemove(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
			})

			r.With(middleware.RequireUser(logg)).
				Post("/checkout", controllers.Checkout(deps.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireUser(logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Admin, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.Admin, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderStatusUpdate(deps.Admin, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(deps.Catalog, logg))
			r.Post("/", controllers.AdminProductCreate(deps.Catalog, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(deps.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(deps.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminCategoryList(deps.Catalog, logg))
			r.Post("/", controllers.AdminCategoryCreate(deps.Catalog, logg))
			r.Put("/{categoryId}", controllers.AdminCategoryUpdate(deps.Catalog, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDelete(deps.Catalog, logg))
		})
	})

	return r
}
