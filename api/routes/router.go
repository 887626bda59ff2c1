package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/api/controllers"
	"github.com/thandondaba/quickbite-backend/api/middleware"
	cartpkg "github.com/thandondaba/quickbite-backend/internal/cart"
	checkoutsvc "github.com/thandondaba/quickbite-backend/internal/checkout"
	ordersvc "github.com/thandondaba/quickbite-backend/internal/orders"
	productsvc "github.com/thandondaba/quickbite-backend/internal/products"
	"github.com/thandondaba/quickbite-backend/pkg/auth/session"
	"github.com/thandondaba/quickbite-backend/pkg/config"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
	redispkg "github.com/thandondaba/quickbite-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       controllers.Pinger
	RedisClient    *redispkg.Client
	PubSubPinger   controllers.Pinger
	SessionManager session.AccessSessionChecker
	Carts          *cartpkg.Registry
	ProductRepo    *productsvc.Repository
	Products       *productsvc.Service
	Checkout       *checkoutsvc.Service
	Orders         *ordersvc.Service
	DeliveryFee    decimal.Decimal
	Metrics        http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	viewTTL := cfg.Cache.ViewTTL

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisClient, deps.PubSubPinger))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Products, deps.RedisClient, viewTTL, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Products, deps.RedisClient, viewTTL, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Carts, logg))
			r.Post("/items", controllers.CartAddItem(deps.Carts, deps.ProductRepo, logg))
			r.Patch("/items", controllers.CartUpdateItem(deps.Carts, logg))
			r.Delete("/items", controllers.CartRemoveItem(deps.Carts, logg))
			r.Post("/clear", controllers.CartClear(deps.Carts, logg))
			r.Post("/fulfillment", controllers.CartFulfillment(deps.Carts, logg))
			r.Post("/terms", controllers.CartAcceptTerms(deps.Carts, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Checkout, deps.Carts, deps.DeliveryFee, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, deps.RedisClient, viewTTL, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, deps.RedisClient, viewTTL, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireGroup(models.GroupAdmin, logg))

		r.Post("/products", controllers.AdminProductUpsert(deps.Products, logg))
		r.Post("/orders/{orderId}/status", controllers.OrderUpdateStatus(deps.Orders, logg))
	})

	return r
}
