package routes

import (
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/services"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	authenticator services.Authenticator,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	app.Get("/health", healthHandler.Check)

	// Webhooks: signature or bearer auth on the raw body, no JWT
	webhooks := app.Group("/webhook")
	webhooks.Post("/revenuecat", middleware.WebhookAuth(authenticator), webhookHandler.HandleRevenueCat)
}
