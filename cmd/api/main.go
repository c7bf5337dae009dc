package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bingbai-ux/baoflow-backend/api/routes"
	"github.com/bingbai-ux/baoflow-backend/internal/lifecycle"
	"github.com/bingbai-ux/baoflow-backend/internal/payments"
	"github.com/bingbai-ux/baoflow-backend/internal/quoting"
	"github.com/bingbai-ux/baoflow-backend/pkg/config"
	"github.com/bingbai-ux/baoflow-backend/pkg/db"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
	"github.com/bingbai-ux/baoflow-backend/pkg/metrics"
	"github.com/bingbai-ux/baoflow-backend/pkg/migrate"
	"github.com/bingbai-ux/baoflow-backend/pkg/outbox"
	"github.com/bingbai-ux/baoflow-backend/pkg/rates"
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

	// The rate cache is optional: without Redis the provider serves the
	// configured default rate.
	var rateCache rates.Cache
	if cfg.Redis.URL != "" {
		rateCache, err = rates.NewRedisCache(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis rate cache", err)
			os.Exit(1)
		}
	}
	rateProvider := rates.NewProvider(cfg.Rates, nil, rateCache, logg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	lifecycleMetrics := metrics.NewLifecycleMetrics(registry)

	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	dealRepo := lifecycle.NewRepository(dbClient.DB())

	lifecycleService, err := lifecycle.NewService(dbClient, dealRepo, events, logg, lifecycleMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create lifecycle service", err)
		os.Exit(1)
	}

	quotingCoordinator, err := quoting.NewCoordinator(
		dbClient, dealRepo, quoting.NewRepository(dbClient.DB()),
		events, rateProvider, cfg.Billing, logg, lifecycleMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create quoting coordinator", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(
		dbClient, dealRepo, payments.NewRepository(dbClient.DB()),
		events, rateProvider, cfg.Fees, logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
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
		Addr: addr,
		Handler: routes.New(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Lifecycle: lifecycleService,
			Quoting:   quotingCoordinator,
			Payments:  paymentsService,
			Rates:     rateProvider,
			Registry:  registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
