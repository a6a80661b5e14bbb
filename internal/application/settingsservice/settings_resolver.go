// Package settingsservice resolves gateway credentials with an explicit
// precedence rule: a persisted provider-settings row wins when it exists
// AND is enabled; otherwise the static config values apply.
package settingsservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/interfaces"
	"github.com/tixora/payments/internal/repositories/settingsrepo"
	"github.com/tixora/payments/pkg/config"
)

const ProviderUniPayment = "unipayment"

type resolver struct {
	repo   settingsrepo.ISettingsRepository
	cfg    config.GatewayConfig
	logger zerolog.Logger
}

func New(repo settingsrepo.ISettingsRepository, cfg config.GatewayConfig, logger zerolog.Logger) interfaces.SettingsResolver {
	return &resolver{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

func (r *resolver) Resolve(ctx context.Context) (domain.GatewayCredentials, error) {
	static := domain.GatewayCredentials{
		BaseURL:       r.cfg.BaseURL,
		AppID:         r.cfg.AppID,
		APIKey:        r.cfg.APIKey,
		WebhookSecret: r.cfg.WebhookSecret,
		Environment:   r.cfg.Environment,
	}

	settings, err := r.repo.Get(ctx, ProviderUniPayment)
	if err != nil {
		// Fall back to static config rather than refusing payments when
		// the settings table is unreachable.
		r.logger.Error().Err(err).Msg("Failed to load provider settings, using static config")
		return static, nil
	}
	if settings == nil || !settings.Enabled {
		return static, nil
	}

	creds := domain.GatewayCredentials{
		BaseURL:       static.BaseURL,
		AppID:         settings.AppID,
		APIKey:        settings.APIKey,
		WebhookSecret: settings.WebhookSecret,
		Environment:   settings.Environment,
	}
	return creds, nil
}
