package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/littlemija/littlemija-backend/internal/cron"
	"github.com/littlemija/littlemija-backend/pkg/config"
	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	"github.com/littlemija/littlemija-backend/pkg/metrics"
	"github.com/littlemija/littlemija-backend/pkg/migrate"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
	"github.com/littlemija/littlemija-backend/pkg/redis"
)

const serviceKind = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceKind,
	})

	if err := run(ctx, cfg, logg, *once); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, once bool) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	service, err := buildService(cfg, logg, outbox.NewRepository(dbClient.DB()), redisClient)
	if err != nil {
		return err
	}

	if cfg.Cron.MetricsAddr != "" && !once {
		go serveMetrics(ctx, cfg.Cron.MetricsAddr, logg)
	}

	if once {
		logg.Info(ctx, "running a single cron cycle")
		return service.RunOnce(ctx)
	}
	logg.Info(ctx, "starting cron worker")
	return service.Run(ctx)
}

func buildService(cfg *config.Config, logg *logger.Logger, outboxRepo *outbox.Repository, redisClient *redis.Client) (*cron.Service, error) {
	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), cfg.Cron.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("cron lock: %w", err)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outboxRepo,
		Retention:  cfg.Cron.OutboxRetention,
		Every:      cfg.Cron.RetentionEvery,
	})
	if err != nil {
		return nil, fmt.Errorf("outbox retention job: %w", err)
	}
	backlogJob, err := cron.NewOutboxBacklogJob(cron.OutboxBacklogJobParams{
		Logger:      logg,
		Repository:  outboxRepo,
		MaxAttempts: cfg.Outbox.MaxAttempts,
		Metrics:     cronMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("outbox backlog job: %w", err)
	}

	registry, err := cron.NewRegistry(retentionJob, backlogJob)
	if err != nil {
		return nil, fmt.Errorf("cron registry: %w", err)
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
}

func serveMetrics(ctx context.Context, addr string, logg *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "cron metrics listener stopped", err)
	}
}

// lockName scopes the lease per environment so staging and prod workers sharing a Redis do not
// block each other.
func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("%s:%s", serviceKind, env)
}
