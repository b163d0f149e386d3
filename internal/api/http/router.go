package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/invoice-service/internal/api/http/handlers"
	"github.com/spec-kit/invoice-service/internal/auth"
	"github.com/spec-kit/invoice-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Invoices       *handlers.InvoicesHandler
	PurchaseOrders *handlers.PurchaseOrdersHandler
	Chat           *handlers.ChatHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
	ChatLimiter    fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}
	with := func(hs ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, authenticated...), hs...)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Get("/me", with(cfg.Users.Me)...)
	authGroup.Post("/password/change", with(cfg.Users.ChangePassword)...)

	invoices := app.Group("/invoices", authenticated...)
	invoices.Post("/", cfg.Invoices.Create)
	invoices.Get("/", cfg.Invoices.List)
	invoices.Get("/:id", cfg.Invoices.Get)
	invoices.Get("/:id/document", cfg.Invoices.Document)

	orders := app.Group("/purchase-orders", authenticated...)
	orders.Post("/", cfg.PurchaseOrders.Create)
	orders.Get("/", cfg.PurchaseOrders.List)
	orders.Get("/:id", cfg.PurchaseOrders.Get)

	if cfg.ChatLimiter != nil {
		app.Post("/chat", with(cfg.ChatLimiter, cfg.Chat.Reply)...)
	} else {
		app.Post("/chat", with(cfg.Chat.Reply)...)
	}

	app.Get("/metrics", with(auth.RequireRole(domain.UserRoleAdmin), cfg.Metrics.Snapshot)...)
}
