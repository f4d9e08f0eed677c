package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/config"
	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/dto"
)

const parseModeMarkdown = "Markdown"

// Notifier delivers one rendered message to the configured chat.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TelegramService posts to the Bot API sendMessage method. It makes a single
// attempt per call.
type TelegramService struct {
	httpClient *http.Client
	apiURL     string
	botToken   string
	chatID     string
}

func NewTelegramService(cfg *config.Config) *TelegramService {
	timeout := cfg.TelegramTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &TelegramService{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     cfg.TelegramAPIURL,
		botToken:   cfg.TelegramBotToken,
		chatID:     cfg.TelegramGroupID,
	}
}

func (s *TelegramService) Send(ctx context.Context, text string) error {
	reqBody, err := json.Marshal(dto.TelegramSendMessageRequest{
		ChatID:    s.chatID,
		Text:      text,
		ParseMode: parseModeMarkdown,
	})
	if err != nil {
		return &DeliveryError{Err: err}
	}

	endpoint := s.apiURL + "/bot" + s.botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return &DeliveryError{Err: s.redact(err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Err: s.redact(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var tgResp dto.TelegramResponse
	description := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &tgResp); err == nil && tgResp.Description != "" {
		description = tgResp.Description
	}
	return &DeliveryError{StatusCode: resp.StatusCode, Description: description}
}

// redact keeps the bot token out of errors that end up in logs.
func (s *TelegramService) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf("%s sendMessage: %w", urlErr.Op, urlErr.Err)
	}
	if s.botToken == "" {
		return err
	}
	if msg := err.Error(); strings.Contains(msg, s.botToken) {
		return errors.New(strings.ReplaceAll(msg, s.botToken, "<redacted>"))
	}
	return err
}
