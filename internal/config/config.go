package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AuthModeSignature = "signature"
	AuthModeBearer    = "bearer"
)

type Config struct {
	// Telegram
	TelegramBotToken string
	TelegramGroupID  string
	TelegramAPIURL   string
	TelegramTimeout  time.Duration

	// RevenueCat webhook auth
	AuthMode       string
	WebhookSecret  string
	AllowUnsigned  bool
	MarkdownEscape bool
	Timezone       string

	// Logging
	LogLevel string
	LogDBDSN string

	// Server
	Port string
}

func Load() *Config {
	return &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramGroupID:  getEnv("TELEGRAM_GROUP_ID", ""),
		TelegramAPIURL:   strings.TrimRight(getEnv("TELEGRAM_API_URL", "https://api.telegram.org"), "/"),
		TelegramTimeout:  parseDuration(getEnv("TELEGRAM_TIMEOUT", "10s")),

		AuthMode:       strings.ToLower(getEnv("AUTH_MODE", AuthModeSignature)),
		WebhookSecret:  getEnv("REVENUECAT_WEBHOOK_SECRET", ""),
		AllowUnsigned:  parseBool(getEnv("REVENUECAT_ALLOW_UNSIGNED", "false")),
		MarkdownEscape: parseBool(getEnv("MARKDOWN_ESCAPE", "false")),
		Timezone:       getEnv("TIMEZONE", "UTC"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDBDSN: getEnv("LOG_DB_DSN", ""),

		Port: getEnv("PORT", "8080"),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramBotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.TelegramGroupID == "" {
		errs = append(errs, errors.New("TELEGRAM_GROUP_ID is required"))
	}

	switch c.AuthMode {
	case AuthModeSignature:
		if c.WebhookSecret == "" && !c.AllowUnsigned {
			errs = append(errs, errors.New("REVENUECAT_WEBHOOK_SECRET is required in signature mode unless REVENUECAT_ALLOW_UNSIGNED=true"))
		}
	case AuthModeBearer:
		if c.WebhookSecret == "" {
			errs = append(errs, errors.New("REVENUECAT_WEBHOOK_SECRET is required in bearer mode"))
		}
	default:
		errs = append(errs, errors.New("AUTH_MODE must be \"signature\" or \"bearer\", got \""+c.AuthMode+"\""))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, errors.New("TIMEZONE is not a valid IANA zone: "+c.Timezone))
	}
	return errors.Join(errs...)
}

// Location returns the configured display time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
