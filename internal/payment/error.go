package payment

import (
	"errors"
	"fmt"
)

var (
	// -- Validation & Input --
	ErrInvalidAmount = errors.New("amount must be a positive finite number of minor units")
	ErrMissingFields = errors.New("order id, payment id and signature are all required")

	// -- Verification --
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	ErrOrderMismatch     = errors.New("payment does not belong to the given order")

	// -- Resource State --
	ErrPaymentRecordNotFound = errors.New("payment record not found")

	// -- Configuration (fatal, not per-request recoverable) --
	ErrSecretNotConfigured = errors.New("payment signing secret is not configured")
)

// GatewayError wraps a provider failure. StatusCode carries the provider's
// HTTP status when it was a 4xx, otherwise 500.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (%d): %s", e.StatusCode, e.Message)
}

// NotCapturedError is returned when the fetched payment record exists and
// matches the order, but its status is anything other than captured.
type NotCapturedError struct {
	Status string
}

func (e *NotCapturedError) Error() string {
	return fmt.Sprintf("payment not captured (status %q)", e.Status)
}
