package settingsrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/infrastructure/database"
)

type settingsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) ISettingsRepository {
	return &settingsRepository{
		db:     db.Db,
		logger: logger,
	}
}

func (r *settingsRepository) Get(ctx context.Context, provider string) (*domain.ProviderSettings, error) {
	query := `SELECT id, provider, app_id, api_key, webhook_secret, environment, enabled, created_at, updated_at
		FROM provider_settings WHERE provider = $1`

	var (
		id       uuid.UUID
		settings domain.ProviderSettings
	)
	err := r.db.QueryRowContext(ctx, query, provider).Scan(
		&id,
		&settings.Provider,
		&settings.AppID,
		&settings.APIKey,
		&settings.WebhookSecret,
		&settings.Environment,
		&settings.Enabled,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("provider", provider).Msg("Failed to get provider settings")
		return nil, fmt.Errorf("failed to get provider settings: %w", err)
	}

	settings.ID = id.String()
	return &settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *domain.ProviderSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.New().String()
	}
	now := time.Now()

	query := `INSERT INTO provider_settings (id, provider, app_id, api_key, webhook_secret, environment, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (provider) DO UPDATE SET
			app_id = EXCLUDED.app_id,
			api_key = EXCLUDED.api_key,
			webhook_secret = EXCLUDED.webhook_secret,
			environment = EXCLUDED.environment,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		uuid.MustParse(settings.ID),
		settings.Provider,
		settings.AppID,
		settings.APIKey,
		settings.WebhookSecret,
		settings.Environment,
		settings.Enabled,
		now,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("provider", settings.Provider).Msg("Failed to upsert provider settings")
		return fmt.Errorf("failed to upsert provider settings: %w", err)
	}

	return nil
}
