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
	"go.uber.org/multierr"

	"github.com/angelmondragon/pulse-analytics/api"
	"github.com/angelmondragon/pulse-analytics/api/controllers"
	"github.com/angelmondragon/pulse-analytics/api/routes"
	"github.com/angelmondragon/pulse-analytics/internal/analytics"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/cache"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/store"
	"github.com/angelmondragon/pulse-analytics/pkg/config"
	"github.com/angelmondragon/pulse-analytics/pkg/db"
	"github.com/angelmondragon/pulse-analytics/pkg/geo"
	"github.com/angelmondragon/pulse-analytics/pkg/instance"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
	"github.com/angelmondragon/pulse-analytics/pkg/metrics"
	"github.com/angelmondragon/pulse-analytics/pkg/migrate"
	"github.com/angelmondragon/pulse-analytics/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers := []func() error{dbClient.Close}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	queryMetrics := metrics.NewQueryMetrics(registry)

	readiness := map[string]controllers.Pinger{"database": dbClient}
	cacheOpts := []cache.Option{cache.WithMetrics(queryMetrics), cache.WithLogger(logg)}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		readiness["redis"] = redisClient
		cacheOpts = append(cacheOpts, cache.WithRemote(cache.NewRedisRemote(redisClient)))
	} else {
		logg.Info(ctx, "redis not configured, result cache is process-local")
	}

	geoClient, err := geo.NewClient(cfg.Geo.URL,
		geo.WithFeatureProperty(cfg.Geo.FeatureProperty),
		geo.WithTimeout(cfg.Geo.Timeout),
	)
	if err != nil {
		logg.Error(ctx, "failed to create geo client", err)
		os.Exit(1)
	}

	aggregateStore := store.New(dbClient.DB(), store.WithMetrics(queryMetrics), store.WithLogger(logg))
	rowCache := cache.New(cfg.Cache.TTL, cacheOpts...)
	analyticsService, err := analytics.NewService(aggregateStore, rowCache, geo.NewResolver(geoClient), logg)
	if err != nil {
		logg.Error(ctx, "failed to create analytics service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})

	server := api.NewServer(cfg, addr, routes.NewRouter(cfg, logg, readiness, registry, analyticsService))
	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			exitCode = 1
		}
		cancel()
	}

	var closeErr error
	for _, closeFn := range closers {
		closeErr = multierr.Append(closeErr, closeFn())
	}
	if closeErr != nil {
		logg.Error(context.Background(), "error closing resources", closeErr)
		exitCode = 1
	}
	os.Exit(exitCode)
}
