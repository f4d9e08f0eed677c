package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/config"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/database"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/logging"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/routes"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AuthMode == config.AuthModeSignature && cfg.AllowUnsigned {
		slog.Warn("unsigned RevenueCat webhooks are accepted (REVENUECAT_ALLOW_UNSIGNED=true)")
	}

	// Optional PostgreSQL sink for ERROR+ logs
	var (
		logDB         *gorm.DB
		pgLogHandler  *logging.PGHandler
		cleanupDone   chan struct{}
		cleanupExited <-chan struct{}
	)
	if cfg.LogDBDSN != "" {
		db, err := database.Connect(cfg.LogDBDSN)
		if err != nil {
			slog.Error("log store connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("log store migration failed", "error", err)
			os.Exit(1)
		}
		logDB = db
		pgLogHandler = logging.NewPGHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, pgLogHandler)))

		// Log cleanup (30-day retention)
		cleanupDone = make(chan struct{})
		cleanupExited = logging.StartCleanup(db, cleanupDone)
	}

	// Services
	authenticator, err := services.NewAuthenticator(cfg)
	if err != nil {
		slog.Error("authenticator setup failed", "error", err)
		os.Exit(1)
	}
	formatter := services.NewEventFormatter(cfg.MarkdownEscape, cfg.Location())
	telegramService := services.NewTelegramService(cfg)

	// Handlers
	var logStorePing func() error
	if logDB != nil {
		logStorePing = func() error { return database.Ping(logDB) }
	}
	healthHandler := handlers.NewHealthHandler(authenticator.Mode(), logStorePing)
	webhookHandler := handlers.NewWebhookHandler(formatter, telegramService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:             1 * 1024 * 1024,
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, authenticator, healthHandler, webhookHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "auth_mode", authenticator.Mode())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	sentry.Flush(2 * time.Second)

	if logDB != nil {
		close(cleanupDone)
		<-cleanupExited
		pgLogHandler.Stop()
		slog.SetDefault(slog.New(stdoutHandler))
		if err := database.Close(logDB); err != nil {
			slog.Error("log store close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
