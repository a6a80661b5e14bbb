package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tixora/payments/pkg/logger"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Security  SecurityConfig  `yaml:"security"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	JWT       JWTConfig       `yaml:"jwt"`
	Admin     AdminConfig     `yaml:"admin"`
	Logging   logger.Config   `yaml:"logging"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	BaseURL     string `yaml:"base_url"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	User            string `yaml:"user"`
	DBName          string `yaml:"name"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// GatewayConfig holds the static UniPayment credentials. A persisted
// provider-settings row, when present and enabled, takes precedence over
// these values (see the settings resolver).
type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`
	AppID          string `yaml:"app_id"`
	APIKey         string `yaml:"api_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	Environment    string `yaml:"environment"` // sandbox or production
	Timeout        int    `yaml:"timeout"`
	ConnectTimeout int    `yaml:"connect_timeout"`
	Version        string `yaml:"version"`
}

type RateLimitRule struct {
	MaxAttempts  int `yaml:"max_attempts"`
	DecayMinutes int `yaml:"decay_minutes"`
}

type PaymentsConfig struct {
	DefaultAmount    float64                  `yaml:"default_amount"`
	MinAmount        float64                  `yaml:"min_amount"`
	MaxAmount        float64                  `yaml:"max_amount"`
	FiatCurrencies   []string                 `yaml:"fiat_currencies"`
	CryptoCurrencies []string                 `yaml:"crypto_currencies"`
	SessionTTL       time.Duration            `yaml:"session_ttl"`
	RateLimits       map[string]RateLimitRule `yaml:"rate_limits"`
}

type SecurityConfig struct {
	WebhookSignatureHeader string   `yaml:"webhook_signature_header"`
	BlockedUserAgents      []string `yaml:"blocked_user_agents"`
	// AllowedOrigins restricts CORS; empty means any origin.
	AllowedOrigins        []string `yaml:"allowed_origins"`
	RequireHTTPS          bool     `yaml:"require_https"`
	LogAllWebhookRequests bool     `yaml:"log_all_webhook_requests"`
}

type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	CheckOrigin     bool          `yaml:"check_origin"`
	PingPeriod      time.Duration `yaml:"ping_period"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		return nil, err
	}

	var config Config
	configData, err := os.ReadFile("./config.yaml")
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(configData))), &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Payments.MinAmount == 0 {
		c.Payments.MinAmount = 1.00
	}
	if c.Payments.MaxAmount == 0 {
		c.Payments.MaxAmount = 100000.00
	}
	if len(c.Payments.FiatCurrencies) == 0 {
		c.Payments.FiatCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD"}
	}
	if len(c.Payments.CryptoCurrencies) == 0 {
		c.Payments.CryptoCurrencies = []string{"BTC", "ETH", "USDT"}
	}
	if c.Payments.SessionTTL == 0 {
		c.Payments.SessionTTL = 30 * time.Minute
	}
	if c.Payments.RateLimits == nil {
		c.Payments.RateLimits = map[string]RateLimitRule{}
	}
	for op, rule := range DefaultRateLimits() {
		if _, ok := c.Payments.RateLimits[op]; !ok {
			c.Payments.RateLimits[op] = rule
		}
	}
	if c.Security.WebhookSignatureHeader == "" {
		c.Security.WebhookSignatureHeader = "X-UniPayment-Signature"
	}
	if len(c.Security.BlockedUserAgents) == 0 {
		c.Security.BlockedUserAgents = []string{"bot", "crawler", "spider", "scraper", "curl", "wget", "python-requests"}
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 30
	}
	if c.Gateway.ConnectTimeout == 0 {
		c.Gateway.ConnectTimeout = 10
	}
}

// DefaultRateLimits is the per-operation attempt budget applied when the
// config file does not override an operation.
func DefaultRateLimits() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"card_payment":         {MaxAttempts: 5, DecayMinutes: 10},
		"crypto_payment":       {MaxAttempts: 10, DecayMinutes: 5},
		"payment_confirmation": {MaxAttempts: 3, DecayMinutes: 15},
		"payment_retry":        {MaxAttempts: 3, DecayMinutes: 15},
		"payment_switch":       {MaxAttempts: 5, DecayMinutes: 10},
		"webhook":              {MaxAttempts: 20, DecayMinutes: 1},
		"callback":             {MaxAttempts: 10, DecayMinutes: 5},
		"admin_config":         {MaxAttempts: 10, DecayMinutes: 1},
		"admin_test":           {MaxAttempts: 5, DecayMinutes: 1},
		"admin_status":         {MaxAttempts: 20, DecayMinutes: 1},
	}
}

// IsLocal reports whether the server runs in an environment where the
// HTTPS requirement is waived.
func (c *Config) IsLocal() bool {
	return c.Server.Environment == "local" || c.Server.Environment == "development"
}
