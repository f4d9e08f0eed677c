package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_GROUP_ID", "-1001")
	t.Setenv("REVENUECAT_WEBHOOK_SECRET", "s3cret")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AuthModeSignature, cfg.AuthMode)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPIURL)
	assert.Equal(t, 10*time.Second, cfg.TelegramTimeout)
	assert.False(t, cfg.AllowUnsigned)
	assert.False(t, cfg.MarkdownEscape)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "Bearer")
	t.Setenv("TELEGRAM_API_URL", "http://localhost:9000/")
	t.Setenv("TELEGRAM_TIMEOUT", "3s")
	t.Setenv("MARKDOWN_ESCAPE", "true")
	t.Setenv("TIMEZONE", "Europe/Berlin")

	cfg := Load()
	assert.Equal(t, AuthModeBearer, cfg.AuthMode)
	assert.Equal(t, "http://localhost:9000", cfg.TelegramAPIURL)
	assert.Equal(t, 3*time.Second, cfg.TelegramTimeout)
	assert.True(t, cfg.MarkdownEscape)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestValidate_ReportsAllMissing(t *testing.T) {
	cfg := &Config{AuthMode: AuthModeSignature, Timezone: "UTC"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "TELEGRAM_GROUP_ID")
	assert.Contains(t, err.Error(), "REVENUECAT_WEBHOOK_SECRET")
}

func TestValidate_SignatureAllowUnsignedWithoutSecret(t *testing.T) {
	cfg := &Config{
		TelegramBotToken: "t",
		TelegramGroupID:  "g",
		AuthMode:         AuthModeSignature,
		AllowUnsigned:    true,
		Timezone:         "UTC",
	}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BearerNeedsSecret(t *testing.T) {
	cfg := &Config{
		TelegramBotToken: "t",
		TelegramGroupID:  "g",
		AuthMode:         AuthModeBearer,
		AllowUnsigned:    true,
		Timezone:         "UTC",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bearer mode")
}

func TestValidate_UnknownModeAndZone(t *testing.T) {
	cfg := &Config{
		TelegramBotToken: "t",
		TelegramGroupID:  "g",
		WebhookSecret:    "s",
		AuthMode:         "basic",
		Timezone:         "Mars/Olympus",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_MODE")
	assert.Contains(t, err.Error(), "TIMEZONE")
}
