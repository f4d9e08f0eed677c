package services

import (
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleBody = []byte(`{"event":{"type":"INITIAL_PURCHASE","app_id":"app_1"}}`)

func signedHeaders(secret string, body []byte) http.Header {
	h := http.Header{}
	h.Set(SignatureHeader, hex.EncodeToString(Sign([]byte(secret), body)))
	return h
}

func TestSignatureAuthenticator_Valid(t *testing.T) {
	a := NewSignatureAuthenticator("s3cret", false)
	assert.NoError(t, a.Authenticate(sampleBody, signedHeaders("s3cret", sampleBody)))
}

func TestSignatureAuthenticator_UppercaseHex(t *testing.T) {
	a := NewSignatureAuthenticator("s3cret", false)
	h := http.Header{}
	sig := hex.EncodeToString(Sign([]byte("s3cret"), sampleBody))
	h.Set(SignatureHeader, " "+upper(sig)+" ")
	assert.NoError(t, a.Authenticate(sampleBody, h))
}

func TestSignatureAuthenticator_TamperedBody(t *testing.T) {
	a := NewSignatureAuthenticator("s3cret", false)
	headers := signedHeaders("s3cret", sampleBody)

	tampered := append([]byte(nil), sampleBody...)
	tampered[len(tampered)-3] = 'X'

	err := a.Authenticate(tampered, headers)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignatureAuthenticator_WrongSecret(t *testing.T) {
	a := NewSignatureAuthenticator("s3cret", false)
	err := a.Authenticate(sampleBody, signedHeaders("other", sampleBody))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignatureAuthenticator_NotHex(t *testing.T) {
	a := NewSignatureAuthenticator("s3cret", false)
	h := http.Header{}
	h.Set(SignatureHeader, "not-a-signature")
	assert.ErrorIs(t, a.Authenticate(sampleBody, h), ErrUnauthorized)
}

func TestSignatureAuthenticator_MissingHeader(t *testing.T) {
	strict := NewSignatureAuthenticator("s3cret", false)
	assert.ErrorIs(t, strict.Authenticate(sampleBody, http.Header{}), ErrUnauthorized)

	permissive := NewSignatureAuthenticator("s3cret", true)
	assert.NoError(t, permissive.Authenticate(sampleBody, http.Header{}))
}

func TestSignatureAuthenticator_HeaderWithoutSecret(t *testing.T) {
	a := NewSignatureAuthenticator("", true)
	err := a.Authenticate(sampleBody, signedHeaders("anything", sampleBody))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBearerAuthenticator(t *testing.T) {
	a := NewBearerAuthenticator("tok")

	tests := []struct {
		name   string
		header string
		ok     bool
	}{
		{"exact", "Bearer tok", true},
		{"missing", "", false},
		{"no scheme", "tok", false},
		{"wrong token", "Bearer nope", false},
		{"lowercase scheme", "bearer tok", false},
		{"trailing space", "Bearer tok ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			err := a.Authenticate(sampleBody, h)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnauthorized)
			}
		})
	}
}

func TestNewAuthenticator_SelectsMode(t *testing.T) {
	a, err := NewAuthenticator(&config.Config{AuthMode: config.AuthModeBearer, WebhookSecret: "x"})
	require.NoError(t, err)
	assert.IsType(t, &BearerAuthenticator{}, a)
	assert.Equal(t, config.AuthModeBearer, a.Mode())

	a, err = NewAuthenticator(&config.Config{AuthMode: config.AuthModeSignature, WebhookSecret: "x"})
	require.NoError(t, err)
	assert.IsType(t, &SignatureAuthenticator{}, a)

	_, err = NewAuthenticator(&config.Config{AuthMode: "basic"})
	assert.Error(t, err)
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
