package routes

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/config"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	cfg := &config.Config{TelegramAPIURL: "http://127.0.0.1:1", TelegramTimeout: time.Second}
	auth := services.NewBearerAuthenticator("tok")

	app := fiber.New()
	Setup(app,
		auth,
		handlers.NewHealthHandler(auth.Mode(), nil),
		handlers.NewWebhookHandler(services.NewEventFormatter(false, time.UTC), services.NewTelegramService(cfg)),
	)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/webhook/revenuecat", bytes.NewBufferString(`{"event":{"type":"TEST"}}`)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("POST", "/webhook/revenuecat", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer tok")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/webhook/revenuecat", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
}
