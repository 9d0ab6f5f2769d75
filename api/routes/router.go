package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arkfood/ordering-backend/api/controllers"
	"github.com/arkfood/ordering-backend/api/middleware"
	cartsvc "github.com/arkfood/ordering-backend/internal/cart"
	"github.com/arkfood/ordering-backend/internal/catalog"
	"github.com/arkfood/ordering-backend/internal/hours"
	"github.com/arkfood/ordering-backend/pkg/config"
	"github.com/arkfood/ordering-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Schedule hours.Schedule

	CartManager *cartsvc.Manager
	Catalog     catalog.Service

	// Health pingers by dependency name; nil entries are reported as skipped.
	Pingers map[string]controllers.Pinger

	// Gatherer backs /metrics; nil falls back to the default registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Pingers))
	})

	gatherer := params.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.Menu(params.Catalog, logg))
			r.Get("/popular", controllers.MenuPopular(params.Catalog, logg))
			r.Get("/categories/{category}", controllers.MenuCategory(params.Catalog, logg))
			r.Get("/dishes/{dishId}", controllers.MenuDish(params.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))

			r.Get("/", controllers.CartFetch(params.CartManager, logg))
			r.Delete("/", controllers.CartClear(params.CartManager, logg))
			r.Post("/items", controllers.CartAddItem(params.CartManager, logg))
			r.Patch("/items/{lineId}", controllers.CartUpdateItem(params.CartManager, logg))
			r.Delete("/items/{lineId}", controllers.CartRemoveItem(params.CartManager, logg))
			r.Get("/recommendations", controllers.CartRecommendations(params.CartManager, params.Catalog, logg))
			r.Get("/export", controllers.CartExport(params.CartManager, logg))
			r.Post("/import", controllers.CartImport(params.CartManager, logg))
			r.Post("/checkout", controllers.CartCheckout(params.CartManager, cfg, params.Schedule, logg))
		})
	})

	return r
}
