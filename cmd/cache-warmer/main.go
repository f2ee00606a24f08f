package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/cache"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/store"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	"github.com/angelmondragon/pulse-analytics/internal/warmer"
	"github.com/angelmondragon/pulse-analytics/pkg/config"
	"github.com/angelmondragon/pulse-analytics/pkg/db"
	"github.com/angelmondragon/pulse-analytics/pkg/instance"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
	"github.com/angelmondragon/pulse-analytics/pkg/metrics"
	"github.com/angelmondragon/pulse-analytics/pkg/migrate"
	"github.com/angelmondragon/pulse-analytics/pkg/redis"
)

const serviceName = "cache-warmer"

func main() {
	once := flag.Bool("once", false, "run a single warm cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	if !cfg.Redis.Enabled() {
		logg.Error(context.Background(), "cache warmer needs a shared cache", errors.New(config.EnvRedisURL+" is not set"))
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.ID(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	queryMetrics := metrics.NewQueryMetrics(prometheus.DefaultRegisterer)
	aggregateStore := store.New(dbClient.DB(), store.WithMetrics(queryMetrics), store.WithLogger(logg))
	rowCache := cache.New(cfg.Cache.TTL,
		cache.WithRemote(cache.NewRedisRemote(redisClient)),
		cache.WithMetrics(queryMetrics),
		cache.WithLogger(logg),
	)

	tables, err := parseTables(cfg.Warmer.Tables)
	if err != nil {
		logg.Error(ctx, "invalid warmer tables", err)
		os.Exit(1)
	}
	jobs, err := warmer.RefreshJobs(rowCache, aggregateStore, tables...)
	if err != nil {
		logg.Error(ctx, "failed to build warm jobs", err)
		os.Exit(1)
	}

	lock, err := warmer.NewRedisLock(redisClient, redisClient.LockKey(serviceName, cfg.App.Env), cfg.Warmer.Interval)
	if err != nil {
		logg.Error(ctx, "failed to create warmer lock", err)
		os.Exit(1)
	}

	service, err := warmer.NewService(warmer.ServiceParams{
		Logger:   logg,
		Registry: warmer.NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Warmer.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cache warmer", err)
		os.Exit(1)
	}

	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "warm cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cache warmer")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cache warmer stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cache warmer shutting down gracefully")
}

func parseTables(raw []string) ([]types.TableID, error) {
	tables := make([]types.TableID, 0, len(raw))
	for _, value := range raw {
		table, ok := types.ParseTableID(value)
		if !ok {
			return nil, errors.New("unknown table " + value)
		}
		tables = append(tables, table)
	}
	return tables, nil
}
