package domain

import "errors"

var (
	// ErrSessionExpired is returned when the registration session backing a
	// payment has timed out or was never created.
	ErrSessionExpired = errors.New("registration session expired")

	// ErrRateLimited is returned when an operation's attempt budget for a
	// client has been exceeded within the decay window.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSignatureMismatch is returned when a webhook signature does not
	// match the HMAC computed over the raw payload.
	ErrSignatureMismatch = errors.New("webhook signature mismatch")

	// ErrGatewayUnavailable is returned when the external payment gateway
	// fails or times out.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrSettingsNotFound is returned when no persisted provider settings
	// row exists.
	ErrSettingsNotFound = errors.New("provider settings not found")

	// ErrTransactionNotFound is returned when a transaction lookup misses.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidCredentials is returned on a failed admin login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrKeyNotFound is returned by the key-value store when a key is
	// missing or its TTL has elapsed.
	ErrKeyNotFound = errors.New("key not found")
)

// ValidationError carries field-level validation failures. Keys follow the
// "field.rule" convention (e.g. "amount.max").
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "payment request validation failed"
}
