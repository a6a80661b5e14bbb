package interfaces

import (
	"context"
	"time"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/models"
)

// KVStore is the shared mutable state of the service: rate-limit buckets,
// registration sessions, and webhook idempotency markers. Increments must
// be atomic under concurrent requests for the same key.
type KVStore interface {
	// Incr atomically increments key and returns the new count. The TTL is
	// applied only when the increment creates the key, so the window decays
	// relative to the first attempt.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

// PaymentGateway is the external payment delegate. It is treated as an
// opaque remote service; calls are bounded by the configured timeouts and
// never retried automatically.
type PaymentGateway interface {
	CreateInvoice(ctx context.Context, creds domain.GatewayCredentials, req *models.InvoiceRequest) (*models.Invoice, error)
	QueryInvoice(ctx context.Context, creds domain.GatewayCredentials, invoiceID string) (*models.Invoice, error)
	Ping(ctx context.Context, creds domain.GatewayCredentials) error
}

// SettingsResolver applies the DB-over-config precedence rule and returns
// the credentials the gateway client should use.
type SettingsResolver interface {
	Resolve(ctx context.Context) (domain.GatewayCredentials, error)
}

// StatusBroadcaster pushes payment status updates to connected clients.
type StatusBroadcaster interface {
	Broadcast(update *models.StatusUpdate) error
	GetClientCount() int
}

// WebSocketClient is one connected status-stream subscriber.
type WebSocketClient interface {
	GetID() string
	Send(update *models.StatusUpdate) error
	IsActive() bool
	Close() error
}

// WebSocketManager owns the set of connected status-stream subscribers.
type WebSocketManager interface {
	StatusBroadcaster
	AddClient(client WebSocketClient) error
	RemoveClient(clientID string) error
}
