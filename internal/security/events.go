// Package security records validation failures, rate-limit hits, and
// webhook deliveries with PII masked and secrets stripped.
package security

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/pkg/sanitize"
)

// Keys that must never reach a log line, masked or otherwise.
var excludedKeys = map[string]struct{}{
	"card_number":    {},
	"cvc":            {},
	"cvv":            {},
	"api_key":        {},
	"api_secret":     {},
	"webhook_secret": {},
	"password":       {},
}

type EventLogger struct {
	logger zerolog.Logger
}

func NewEventLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// ValidationFailed records a rejected payment submission together with the
// field error map and a sanitized copy of the input.
func (l *EventLogger) ValidationFailed(client models.ClientInfo, fieldErrors map[string][]string, input map[string]string) {
	l.event("payment_validation_failed", client).
		Interface("errors", fieldErrors).
		Interface("input", Sanitize(input)).
		Msg("Payment validation failed")
}

// RateLimitHit records a denied attempt. Per policy this is the only log
// entry a rate-limited request produces.
func (l *EventLogger) RateLimitHit(client models.ClientInfo, operation string) {
	l.event("rate_limit_hit", client).
		Str("operation", operation).
		Msg("Rate limit exceeded")
}

// WebhookReceived records every webhook delivery, valid or not
// (log_all_webhook_requests policy).
func (l *EventLogger) WebhookReceived(client models.ClientInfo, bodySize int, signatureValid bool) {
	l.event("webhook_received", client).
		Int("body_size", bodySize).
		Bool("signature_valid", signatureValid).
		Msg("Webhook delivery received")
}

// SignatureViolation records a webhook whose signature did not verify.
func (l *EventLogger) SignatureViolation(client models.ClientInfo) {
	l.event("webhook_signature_violation", client).
		Msg("Webhook signature mismatch")
}

// BlockedAgent records a request rejected by the user-agent blocklist.
func (l *EventLogger) BlockedAgent(client models.ClientInfo) {
	l.event("blocked_user_agent", client).
		Msg("Request blocked by user-agent policy")
}

func (l *EventLogger) event(kind string, client models.ClientInfo) *zerolog.Event {
	return l.logger.Warn().
		Str("event", kind).
		Str("ip", client.IP).
		Str("user_agent", client.UserAgent).
		Str("route", client.Route)
}

// Sanitize masks PII fields and drops excluded keys from a detail map.
func Sanitize(input map[string]string) map[string]string {
	out := make(map[string]string, len(input))
	for k, v := range input {
		key := strings.ToLower(k)
		if _, excluded := excludedKeys[key]; excluded {
			continue
		}
		switch key {
		case "email":
			out[k] = sanitize.Email(v)
		case "phone":
			out[k] = sanitize.Phone(v)
		default:
			out[k] = v
		}
	}
	return out
}
