package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stitchlink/stitchlink-backend/api/controllers"
	webhookcontrollers "github.com/stitchlink/stitchlink-backend/api/controllers/webhooks"
	"github.com/stitchlink/stitchlink-backend/api/middleware"
	"github.com/stitchlink/stitchlink-backend/internal/admin"
	"github.com/stitchlink/stitchlink-backend/internal/auth"
	"github.com/stitchlink/stitchlink-backend/internal/authz"
	"github.com/stitchlink/stitchlink-backend/internal/designs"
	"github.com/stitchlink/stitchlink-backend/internal/notifications"
	"github.com/stitchlink/stitchlink-backend/internal/orders"
	"github.com/stitchlink/stitchlink-backend/internal/payments"
	"github.com/stitchlink/stitchlink-backend/internal/seamstresses"
	"github.com/stitchlink/stitchlink-backend/pkg/config"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
	"github.com/stitchlink/stitchlink-backend/pkg/redis"
)

type pinger interface {
	Ping(context.Context) error
}

// Deps carries everything the HTTP surface needs. Construction happens in
// cmd/api; the router only wires handlers to paths and guards.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Auth          auth.Service
	Register      auth.RegisterService
	Designs       designs.Service
	Seamstresses  seamstresses.Service
	Orders        orders.Service
	Payments      payments.Service
	Notifications notifications.Service
	Admin         admin.Service

	StripeWebhook webhookcontrollers.StripeWebhookService
	StripeSigning interface{ SigningSecret() string }
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(d.StripeWebhook, d.StripeSigning, logg))

		r.With(
			middleware.AuthRateLimit(registerPolicy, d.Redis, logg),
			middleware.Idempotency(d.Redis, logg),
		).Post("/auth/register", controllers.AuthRegister(d.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/auth/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/auth/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Post("/auth/select-role", controllers.AuthSelectRole(d.Auth, logg))

		// Catalog browsing is open: customers shop before they sign in.
		r.Get("/designs", controllers.ListDesigns(d.Designs, logg))
		r.Get("/designs/{designID}", controllers.GetDesign(d.Designs, logg))
		r.Get("/seamstresses", controllers.ListSeamstresses(d.Seamstresses, logg))
		r.Get("/seamstresses/{userID}", controllers.GetSeamstressProfile(d.Seamstresses, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(d.Redis, logg))

			designer := r.With(middleware.RequireCapability(authz.CapManageDesigns, logg))
			designer.Post("/designs", controllers.CreateDesign(d.Designs, logg))
			designer.Get("/designs/mine", controllers.ListMyDesigns(d.Designs, logg))
			designer.Put("/designs/{designID}", controllers.UpdateDesign(d.Designs, logg))
			r.Get("/designs/{designID}/offers", controllers.ListDesignOffers(d.Seamstresses, logg))

			r.With(middleware.RequireCapability(authz.CapManageProfile, logg)).Put("/seamstresses/me", controllers.UpsertSeamstressProfile(d.Seamstresses, logg))

			offers := r.With(middleware.RequireCapability(authz.CapManageOffers, logg))
			offers.Post("/offers", controllers.SubmitOffer(d.Seamstresses, logg))
			offers.Get("/offers/mine", controllers.ListMyOffers(d.Seamstresses, logg))
			offers.Patch("/offers/{offerID}", controllers.UpdateOffer(d.Seamstresses, logg))

			r.With(middleware.RequireCapability(authz.CapPlaceOrder, logg)).Post("/orders", controllers.PlaceOrder(d.Orders, logg))
			r.Get("/orders", controllers.ListOrders(d.Orders, logg))
			r.Get("/orders/{orderID}", controllers.GetOrder(d.Orders, logg))
			r.With(middleware.RequireCapability(authz.CapDecideOrder, logg)).Post("/orders/{orderID}/decision", controllers.DecideOrder(d.Orders, logg))
			r.Post("/orders/{orderID}/cancel", controllers.CancelOrder(d.Orders, logg))
			r.With(middleware.RequireCapability(authz.CapProgressOrder, logg)).Post("/orders/{orderID}/progress", controllers.ReportOrderProgress(d.Orders, logg))
			r.With(middleware.RequireCapability(authz.CapProgressOrder, logg)).Post("/orders/{orderID}/complete", controllers.CompleteOrder(d.Orders, logg))

			payer := r.With(middleware.RequireCapability(authz.CapPayOrder, logg))
			payer.Post("/orders/{orderID}/payment-intent", controllers.CreatePaymentIntent(d.Payments, logg))
			payer.Post("/orders/{orderID}/confirm", controllers.ConfirmPayment(d.Payments, logg))
			r.Get("/orders/{orderID}/transfers", controllers.ListOrderTransfers(d.Payments, logg))

			payouts := r.With(middleware.RequireCapability(authz.CapConnectPayouts, logg))
			payouts.Post("/payouts/onboarding", controllers.StartPayoutOnboarding(d.Payments, logg))
			payouts.Get("/payouts/account", controllers.PayoutAccountStatus(d.Payments, logg))

			r.Get("/notifications", controllers.ListNotifications(d.Notifications, logg))
			r.Post("/notifications/{notificationID}/read", controllers.MarkNotificationRead(d.Notifications, logg))
			r.Post("/notifications/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))

			r.With(middleware.RequireCapability(authz.CapViewAdminStats, logg)).Get("/admin/stats", controllers.AdminStats(d.Admin, logg))
			r.With(middleware.RequireCapability(authz.CapOverrideUserRole, logg)).Put("/admin/users/{userID}/role", controllers.AdminOverrideRole(d.Admin, logg))
		})
	})

	return r
}
