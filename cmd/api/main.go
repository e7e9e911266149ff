package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/merlotworks/wineclub-backend/api/routes"
	"github.com/merlotworks/wineclub-backend/internal/auth"
	"github.com/merlotworks/wineclub-backend/internal/catalog"
	"github.com/merlotworks/wineclub-backend/internal/dashboard"
	"github.com/merlotworks/wineclub-backend/internal/fulfillment"
	"github.com/merlotworks/wineclub-backend/internal/members"
	"github.com/merlotworks/wineclub-backend/internal/plans"
	"github.com/merlotworks/wineclub-backend/internal/preferences"
	"github.com/merlotworks/wineclub-backend/pkg/config"
	"github.com/merlotworks/wineclub-backend/pkg/db"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/metrics"
	"github.com/merlotworks/wineclub-backend/pkg/migrate"
	"github.com/merlotworks/wineclub-backend/pkg/redis"
	"github.com/merlotworks/wineclub-backend/pkg/square"
)

const shutdownGrace = 15 * time.Second

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

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap square client", err)
		os.Exit(1)
	}

	reg := prometheus.DefaultRegisterer
	catalogMetrics := metrics.NewCatalogMetrics(reg)
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(reg)

	adminRepo := auth.NewRepository(dbClient.DB())
	planRepo := plans.NewRepository(dbClient.DB())
	memberRepo := members.NewRepository(dbClient.DB())
	fulfillmentRepo := fulfillment.NewRepository(dbClient.DB())

	authService, err := auth.NewService(adminRepo, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(squareClient, logg, catalogMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	planService, err := plans.NewService(planRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create plan service", err)
		os.Exit(1)
	}
	memberService, err := members.NewService(memberRepo, planRepo, squareClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create member service", err)
		os.Exit(1)
	}
	preferenceService, err := preferences.NewService(redisClient, memberRepo, squareClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create preference service", err)
		os.Exit(1)
	}
	dashboardService, err := dashboard.NewService(memberRepo, fulfillmentRepo, catalogService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}
	fulfillmentService, err := fulfillment.NewService(fulfillmentRepo, dbClient, logg, fulfillmentMetrics, cfg.Fulfillment.BoxCapacity)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			authService,
			catalogService,
			dashboardService,
			planService,
			memberService,
			preferenceService,
			fulfillmentService,
		),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "forced shutdown after grace period", err)
		}
	}
}
