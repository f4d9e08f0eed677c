package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized webhook request")
	ErrMissingEvent = errors.New("webhook payload has no event")
)

// FormattingError means the event could not be decoded or rendered.
type FormattingError struct {
	Err error
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("format event: %v", e.Err)
}

func (e *FormattingError) Unwrap() error { return e.Err }

// DeliveryError means the single Telegram send attempt failed. StatusCode is
// zero for transport failures.
type DeliveryError struct {
	StatusCode  int
	Description string
	Err         error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("telegram send failed: %v", e.Err)
	}
	if e.Description != "" {
		return fmt.Sprintf("telegram returned %d: %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram returned %d", e.StatusCode)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
