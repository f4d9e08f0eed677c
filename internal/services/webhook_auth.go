package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/config"
)

const SignatureHeader = "X-RevenueCat-Signature"

// Headers is the read side of a request's headers. http.Header satisfies it.
type Headers interface {
	Get(key string) string
}

// Authenticator decides whether a webhook delivery is genuine. It must be
// given the raw body, before any JSON parsing.
type Authenticator interface {
	Mode() string
	Authenticate(body []byte, headers Headers) error
}

// NewAuthenticator picks the scheme configured for this deployment.
func NewAuthenticator(cfg *config.Config) (Authenticator, error) {
	switch cfg.AuthMode {
	case config.AuthModeSignature:
		return NewSignatureAuthenticator(cfg.WebhookSecret, cfg.AllowUnsigned), nil
	case config.AuthModeBearer:
		return NewBearerAuthenticator(cfg.WebhookSecret), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}

// SignatureAuthenticator checks a hex HMAC-SHA256 of the body.
type SignatureAuthenticator struct {
	secret        []byte
	allowUnsigned bool
}

func NewSignatureAuthenticator(secret string, allowUnsigned bool) *SignatureAuthenticator {
	return &SignatureAuthenticator{secret: []byte(secret), allowUnsigned: allowUnsigned}
}

func (a *SignatureAuthenticator) Mode() string { return config.AuthModeSignature }

func (a *SignatureAuthenticator) Authenticate(body []byte, headers Headers) error {
	signature := strings.TrimSpace(headers.Get(SignatureHeader))
	if signature == "" {
		if a.allowUnsigned {
			return nil
		}
		return fmt.Errorf("%w: missing %s header", ErrUnauthorized, SignatureHeader)
	}
	if len(a.secret) == 0 {
		return fmt.Errorf("%w: no secret configured to verify signature", ErrUnauthorized)
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not hex", ErrUnauthorized)
	}
	if !hmac.Equal(got, Sign(a.secret, body)) {
		return fmt.Errorf("%w: signature mismatch", ErrUnauthorized)
	}
	return nil
}

// Sign returns HMAC-SHA256(secret, body).
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

// BearerAuthenticator expects "Authorization: Bearer <token>".
type BearerAuthenticator struct {
	expected []byte
}

func NewBearerAuthenticator(token string) *BearerAuthenticator {
	return &BearerAuthenticator{expected: []byte("Bearer " + token)}
}

func (a *BearerAuthenticator) Mode() string { return config.AuthModeBearer }

func (a *BearerAuthenticator) Authenticate(_ []byte, headers Headers) error {
	authHeader := headers.Get("Authorization")
	if authHeader == "" {
		return fmt.Errorf("%w: missing Authorization header", ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(authHeader), a.expected) != 1 {
		return fmt.Errorf("%w: bearer token mismatch", ErrUnauthorized)
	}
	return nil
}
