package middleware

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/services"
	"github.com/gofiber/fiber/v2"
)

// fiberHeaders adapts a Fiber request to services.Headers.
type fiberHeaders struct {
	c *fiber.Ctx
}

func (h fiberHeaders) Get(key string) string {
	return h.c.Get(key)
}

// WebhookAuth verifies the delivery against the raw wire body (not the
// Content-Encoding decoded one) before anything parses it.
func WebhookAuth(auth services.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.Authenticate(c.Request().Body(), fiberHeaders{c: c}); err != nil {
			slog.Warn("webhook rejected",
				"mode", auth.Mode(),
				"ip", c.IP(),
				"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
				"error", err,
			)
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Next()
	}
}
