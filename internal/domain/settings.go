package domain

import "time"

// ProviderSettings is the persisted gateway configuration record. When a
// row exists and Enabled is true it takes precedence over the static
// config values.
type ProviderSettings struct {
	ID            string    `json:"id" db:"id"`
	Provider      string    `json:"provider" db:"provider"`
	AppID         string    `json:"app_id" db:"app_id"`
	APIKey        string    `json:"-" db:"api_key"`
	WebhookSecret string    `json:"-" db:"webhook_secret"`
	Environment   string    `json:"environment" db:"environment"`
	Enabled       bool      `json:"enabled" db:"enabled"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// GatewayCredentials is the resolved view the orchestrator and webhook
// service consume, after DB-over-config precedence has been applied.
type GatewayCredentials struct {
	BaseURL       string
	AppID         string
	APIKey        string
	WebhookSecret string
	Environment   string
}
