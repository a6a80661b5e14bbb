package db

import (
	"fmt"
	"net/url"

	"github.com/tixora/payments/pkg/config"
)

// GetDBDSN builds the Postgres connection URL. The password is escaped so
// operator-provided secrets with URL metacharacters survive the round trip.
func GetDBDSN(cfg *config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		sslMode,
	)
}
