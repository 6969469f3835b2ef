package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/littlemija/littlemija-backend/api/controllers"
	"github.com/littlemija/littlemija-backend/api/middleware"
	"github.com/littlemija/littlemija-backend/internal/auth"
	"github.com/littlemija/littlemija-backend/internal/cart"
	checkoutsvc "github.com/littlemija/littlemija-backend/internal/checkout"
	"github.com/littlemija/littlemija-backend/internal/expenses"
	"github.com/littlemija/littlemija-backend/internal/orders"
	"github.com/littlemija/littlemija-backend/internal/products"
	"github.com/littlemija/littlemija-backend/internal/stats"
	"github.com/littlemija/littlemija-backend/pkg/config"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	"github.com/littlemija/littlemija-backend/pkg/metrics"
	pkgredis "github.com/littlemija/littlemija-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Nil services answer with an internal error.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis controllers.Pinger

	Idempotency pkgredis.IdempotencyStore
	RateLimiter pkgredis.RateLimiter

	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth     auth.Service
	Products products.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Expenses expenses.Service
	Stats    stats.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
	)

	loginPolicy := middleware.LoginPolicy(cfg.AuthRateLimit)
	signupPolicy := middleware.SignupPolicy(cfg.AuthRateLimit)

	staff := []enums.Role{enums.RoleMaster, enums.RoleSecond}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    d.DB,
			"redis": d.Redis,
		}, logg))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, d.RateLimiter, logg)).Post("/signup", controllers.AuthSignup(d.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.RateLimiter, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Get("/products", controllers.PublicListProducts(d.Products, logg))
		r.Get("/products/{productId}", controllers.PublicGetProduct(d.Products, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleMaster))
		r.Post("/seed", controllers.AdminSeedUsers(d.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(d.Idempotency, cfg.Idempotency.TTL, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleCustomer))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(d.Cart, logg))
				r.Delete("/", controllers.CartClear(d.Cart, logg))
				r.Post("/items", controllers.CartAddItem(d.Cart, logg))
				r.Put("/items/{productId}", controllers.CartUpdateItem(d.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(d.Cart, logg))
			})
			r.Post("/checkout", controllers.Checkout(d.Checkout, logg))
			r.Get("/orders", controllers.CustomerListOrders(d.Orders, logg))
		})

		// Ownership is enforced by the orders service.
		r.Get("/orders/{orderId}", controllers.GetOrder(d.Orders, logg))
		r.With(middleware.RequireRole(logg, enums.RoleCustomer, enums.RoleMaster)).
			Post("/orders/{orderId}/payment", controllers.RecordPayment(d.Orders, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, staff...))

			r.Get("/orders", controllers.AdminListOrders(d.Orders, logg))
			r.Put("/orders/{orderId}/status", controllers.AdminUpdateOrderStatus(d.Orders, logg))
			r.Get("/customers/{customerId}/orders", controllers.AdminCustomerOrders(d.Orders, logg))
			r.Get("/products", controllers.AdminListProducts(d.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleMaster))
				r.Put("/orders/{orderId}/deposit", controllers.AdminUpdateDeposit(d.Orders, logg))
				r.Post("/products", controllers.AdminCreateProduct(d.Products, logg))
				r.Put("/products/{productId}", controllers.AdminUpdateProduct(d.Products, logg))
				r.Delete("/products/{productId}", controllers.AdminDeleteProduct(d.Products, logg))
				r.Get("/expenses", controllers.AdminListExpenses(d.Expenses, logg))
				r.Post("/expenses", controllers.AdminCreateExpense(d.Expenses, logg))
				r.Get("/stats", controllers.AdminStats(d.Stats, logg))
			})
		})
	})

	return r
}
