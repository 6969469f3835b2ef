package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/littlemija/littlemija-backend/api/routes"
	"github.com/littlemija/littlemija-backend/internal/auth"
	"github.com/littlemija/littlemija-backend/internal/cart"
	"github.com/littlemija/littlemija-backend/internal/checkout"
	"github.com/littlemija/littlemija-backend/internal/expenses"
	"github.com/littlemija/littlemija-backend/internal/inventory"
	"github.com/littlemija/littlemija-backend/internal/orders"
	"github.com/littlemija/littlemija-backend/internal/products"
	"github.com/littlemija/littlemija-backend/internal/stats"
	"github.com/littlemija/littlemija-backend/internal/users"
	"github.com/littlemija/littlemija-backend/pkg/config"
	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	"github.com/littlemija/littlemija-backend/pkg/metrics"
	"github.com/littlemija/littlemija-backend/pkg/migrate"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
	"github.com/littlemija/littlemija-backend/pkg/redis"
	"github.com/littlemija/littlemija-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps, err := buildDeps(cfg, logg, dbClient, redisClient, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedUsers {
		result, err := deps.Auth.SeedDefaults(context.Background())
		if err != nil {
			logg.Error(context.Background(), "failed to seed default users", err)
			os.Exit(1)
		}
		seedCtx := logg.WithFields(context.Background(), map[string]any{
			"created": result.Created,
			"skipped": result.Skipped,
		})
		logg.Info(seedCtx, "default users seeded")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (routes.Deps, error) {
	conn := dbClient.DB()
	orderMetrics := metrics.NewOrderMetrics(registry)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  users.NewRepository(conn),
		Hasher:    security.NewHasher(cfg.Password),
		JWTConfig: cfg.JWT,
		Seed:      cfg.Seed,
		Logger:    logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}

	ledger, err := inventory.NewLedger(conn, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	cartService, err := cart.NewService(cartRepo, dbClient, productRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	checkoutService, err := checkout.NewService(checkout.Params{
		Tx:      dbClient,
		Cart:    cartRepo,
		Orders:  orderRepo,
		Stock:   ledger,
		Outbox:  emitter,
		Metrics: orderMetrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	sweeper, err := orders.NewSweeper(orders.SweeperParams{
		Repo:        orderRepo,
		Tx:          dbClient,
		Stock:       ledger,
		Outbox:      emitter,
		Metrics:     orderMetrics,
		Logger:      logg,
		Parallelism: cfg.Orders.SweepParallelism,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:    orderRepo,
		Tx:      dbClient,
		Stock:   ledger,
		Outbox:  emitter,
		Sweeper: sweeper,
		Metrics: orderMetrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	expenseRepo := expenses.NewRepository(conn)
	expenseService, err := expenses.NewService(expenseRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	statsService, err := stats.NewService(conn, expenseRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Idempotency: redisClient,
		RateLimiter: redisClient,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		Auth:        authService,
		Products:    productService,
		Cart:        cartService,
		Checkout:    checkoutService,
		Orders:      ordersService,
		Expenses:    expenseService,
		Stats:       statsService,
	}, nil
}
