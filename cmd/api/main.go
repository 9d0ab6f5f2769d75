package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arkfood/ordering-backend/api/controllers"
	"github.com/arkfood/ordering-backend/api/routes"
	cartsvc "github.com/arkfood/ordering-backend/internal/cart"
	"github.com/arkfood/ordering-backend/internal/catalog"
	"github.com/arkfood/ordering-backend/internal/hours"
	"github.com/arkfood/ordering-backend/internal/notify"
	"github.com/arkfood/ordering-backend/internal/telemetry"
	"github.com/arkfood/ordering-backend/pkg/config"
	"github.com/arkfood/ordering-backend/pkg/db"
	"github.com/arkfood/ordering-backend/pkg/env"
	"github.com/arkfood/ordering-backend/pkg/instance"
	"github.com/arkfood/ordering-backend/pkg/kv"
	"github.com/arkfood/ordering-backend/pkg/logger"
	"github.com/arkfood/ordering-backend/pkg/metrics"
	"github.com/arkfood/ordering-backend/pkg/migrate"
	"github.com/arkfood/ordering-backend/pkg/pubsub"
	"github.com/arkfood/ordering-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	schedule, err := hours.FromConfig(cfg.Business)
	if err != nil {
		logg.Error(context.Background(), "invalid working hours", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo: catalog.NewRepository(dbClient),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	origin := instance.GetID()
	cartMetrics := metrics.NewCartMetrics(prometheus.DefaultRegisterer)

	manager, err := cartsvc.NewManager(cartsvc.ManagerParams{
		Origin:   origin,
		Catalog:  catalogService,
		KV:       kv.NewRedis(redisClient, logg, origin),
		Notifier: notify.NewLogNotifier(logg),
		Schedule: schedule,
		Metrics:  cartMetrics,
		Logger:   logg,
		Config:   cartsvc.ConfigFromApp(cfg),
		Key:      redisClient.CartKey,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}
	defer manager.Close()

	pingers := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	var tracker telemetry.Tracker = telemetry.Noop{}
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		tracker = telemetry.NewPublisher(pubsubClient.TelemetryPublisher(), logg)
		pingers["pubsub"] = pubsubClient
	}
	manager.Subscribe(telemetry.CartListener(tracker, logg))

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": origin,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			Schedule:    schedule,
			CartManager: manager,
			Catalog:     catalogService,
			Pingers:     pingers,
			Gatherer:    prometheus.DefaultGatherer,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
