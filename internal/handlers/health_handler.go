package handlers

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	authMode string
	logStore func() error
}

// NewHealthHandler takes the log store ping, or nil when the store is disabled.
func NewHealthHandler(authMode string, logStore func() error) *HealthHandler {
	return &HealthHandler{authMode: authMode, logStore: logStore}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storeStatus := "disabled"
	if h.logStore != nil {
		storeStatus = "ok"
		if err := h.logStore(); err != nil {
			slog.Warn("log store ping failed", "error", err)
			storeStatus = "unhealthy"
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		AuthMode:  h.authMode,
		LogStore:  storeStatus,
	})
}
