package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/services"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// EventFormatter renders an event as message text.
type EventFormatter interface {
	Format(event *dto.RevenueCatEvent) (string, error)
}

type WebhookHandler struct {
	formatter EventFormatter
	notifier  services.Notifier
}

func NewWebhookHandler(formatter EventFormatter, notifier services.Notifier) *WebhookHandler {
	return &WebhookHandler{
		formatter: formatter,
		notifier:  notifier,
	}
}

// HandleRevenueCat relays one already-authenticated delivery to Telegram.
// It answers 200, 400 or 500 and never retries the send.
func (h *WebhookHandler) HandleRevenueCat(c *fiber.Ctx) error {
	event, err := decodeEvent(c.Body())
	if errors.Is(err, ErrInvalidPayload) || errors.Is(err, services.ErrMissingEvent) {
		slog.Warn("webhook payload rejected", "error", err)
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if err != nil {
		return h.fail(c, "", err)
	}

	text, err := h.formatter.Format(event)
	if err != nil {
		return h.fail(c, event.Type, err)
	}

	// The request context is not propagated; the send completes even if the
	// caller goes away.
	if err := h.notifier.Send(c.UserContext(), text); err != nil {
		return h.fail(c, event.Type, err)
	}

	slog.Info("webhook relayed", "event_type", event.Type, "app_id", deref(event.AppID))
	c.Status(fiber.StatusOK)
	return nil
}

var ErrInvalidPayload = errors.New("webhook body is not a JSON object")

// decodeEvent separates an absent or non-object event (400) from an event
// object whose fields cannot be decoded (500).
func decodeEvent(body []byte) (*dto.RevenueCatEvent, error) {
	var webhook dto.RevenueCatWebhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	raw := bytes.TrimSpace(webhook.Event)
	if len(raw) == 0 || raw[0] != '{' {
		// null, false, strings, numbers and arrays are not an event object.
		return nil, services.ErrMissingEvent
	}

	var event dto.RevenueCatEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, &services.FormattingError{Err: err}
	}
	return &event, nil
}

func (h *WebhookHandler) fail(c *fiber.Ctx, eventType string, err error) error {
	kind := "internal"
	var delErr *services.DeliveryError
	var fmtErr *services.FormattingError
	switch {
	case errors.As(err, &delErr):
		kind = "delivery"
	case errors.As(err, &fmtErr):
		kind = "formatting"
	}

	slog.Error("webhook processing failed",
		"action", kind,
		"event_type", eventType,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"error", err,
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("failure", kind)
			scope.SetTag("event_type", eventType)
			hub.CaptureException(err)
		})
	}
	return c.SendStatus(fiber.StatusInternalServerError)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
