package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/api/routes"
	cartpkg "github.com/thandondaba/quickbite-backend/internal/cart"
	checkoutsvc "github.com/thandondaba/quickbite-backend/internal/checkout"
	ordersvc "github.com/thandondaba/quickbite-backend/internal/orders"
	productsvc "github.com/thandondaba/quickbite-backend/internal/products"
	"github.com/thandondaba/quickbite-backend/internal/realtime"
	"github.com/thandondaba/quickbite-backend/pkg/auth/session"
	"github.com/thandondaba/quickbite-backend/pkg/config"
	"github.com/thandondaba/quickbite-backend/pkg/db"
	"github.com/thandondaba/quickbite-backend/pkg/env"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
	"github.com/thandondaba/quickbite-backend/pkg/metrics"
	"github.com/thandondaba/quickbite-backend/pkg/migrate"
	"github.com/thandondaba/quickbite-backend/pkg/outbox"
	"github.com/thandondaba/quickbite-backend/pkg/pubsub"
	"github.com/thandondaba/quickbite-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)
	realtimeMetrics := metrics.NewRealtimeMetrics(registry)

	deliveryFee, err := decimal.NewFromString(cfg.Checkout.DeliveryFee)
	if err != nil {
		logg.Error(context.Background(), "invalid delivery fee config", err)
		os.Exit(1)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.NewRepository(dbClient), outboxSvc, checkoutMetrics, logg, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	ordersService, err := ordersvc.NewService(ordersvc.NewRepository(dbClient), outboxSvc, orderMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	productRepo := productsvc.NewRepository(dbClient)
	productsService, err := productsvc.NewService(productRepo, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The invalidation bridge keeps the redis views honest: the feed
	// replays committed outbox events back into cache drops.
	bridge := realtime.NewBridge(realtimeMetrics, logg)
	viewCache, err := realtime.NewViewCache(redisClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create view cache", err)
		os.Exit(1)
	}
	teardown, err := viewCache.Attach(bridge, "api")
	if err != nil {
		logg.Error(ctx, "failed to attach view cache", err)
		os.Exit(1)
	}
	defer teardown()

	feed, err := realtime.NewPubSubFeed(pubsubClient.ChangesSubscription(), realtimeMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create change feed", err)
		os.Exit(1)
	}
	go func() {
		if err := feed.Run(ctx, func(ctx context.Context, event realtime.Event) {
			bridge.Dispatch(ctx, event)
		}); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "change feed stopped unexpectedly", err)
		}
	}()

	handler := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DBPinger:       dbClient,
		RedisClient:    redisClient,
		PubSubPinger:   pubsubClient,
		SessionManager: sessionManager,
		Carts:          cartpkg.NewRegistry(),
		ProductRepo:    productRepo,
		Products:       productsService,
		Checkout:       checkoutService,
		Orders:         ordersService,
		DeliveryFee:    deliveryFee,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
