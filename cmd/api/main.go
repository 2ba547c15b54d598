package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/stitchlink/stitchlink-backend/api/routes"
	"github.com/stitchlink/stitchlink-backend/internal/admin"
	"github.com/stitchlink/stitchlink-backend/internal/auth"
	"github.com/stitchlink/stitchlink-backend/internal/designs"
	"github.com/stitchlink/stitchlink-backend/internal/notifications"
	"github.com/stitchlink/stitchlink-backend/internal/orders"
	"github.com/stitchlink/stitchlink-backend/internal/payments"
	"github.com/stitchlink/stitchlink-backend/internal/seamstresses"
	"github.com/stitchlink/stitchlink-backend/internal/users"
	stripewebhook "github.com/stitchlink/stitchlink-backend/internal/webhooks/stripe"
	"github.com/stitchlink/stitchlink-backend/pkg/config"
	"github.com/stitchlink/stitchlink-backend/pkg/db"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
	"github.com/stitchlink/stitchlink-backend/pkg/metrics"
	"github.com/stitchlink/stitchlink-backend/pkg/migrate"
	"github.com/stitchlink/stitchlink-backend/pkg/redis"
	"github.com/stitchlink/stitchlink-backend/pkg/stripe"
)

const webhookGuardTTL = 7 * 24 * time.Hour

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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	designRepo := designs.NewRepository(dbClient.DB())
	offerRepo := seamstresses.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	transferRepo := payments.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	notificationService, err := notifications.NewService(notificationRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	designService, err := designs.NewService(designRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create designs service", err)
		os.Exit(1)
	}

	seamstressService, err := seamstresses.NewService(offerRepo, designRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create seamstresses service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, dbClient, designRepo, offerRepo, offerRepo, notificationService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Orders:    orderRepo,
		Users:     userRepo,
		Transfers: transferRepo,
		Stripe:    payments.NewStripeClient(stripeClient),
		Notifier:  notificationService,
		Logger:    logg,
		Metrics:   paymentMetrics,
		ResidualFee: payments.ResidualFee{
			Bps:        cfg.Stripe.ResidualFeeBps,
			FixedCents: cfg.Stripe.ResidualFeeFixedCents,
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(userRepo, orderRepo, designRepo, transferRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookGuardTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Payments: paymentService,
		Guard:    webhookGuard,
		Logger:   logg,
		Metrics:  paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Registry:      registry,
			Auth:          authService,
			Register:      registerService,
			Designs:       designService,
			Seamstresses:  seamstressService,
			Orders:        orderService,
			Payments:      paymentService,
			Notifications: notificationService,
			Admin:         adminService,
			StripeWebhook: webhookService,
			StripeSigning: stripeClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
