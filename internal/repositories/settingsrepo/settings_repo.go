package settingsrepo

import (
	"context"

	"github.com/tixora/payments/internal/domain"
)

type ISettingsRepository interface {
	// Get returns the settings row for a provider, or (nil, nil) when no
	// row exists.
	Get(ctx context.Context, provider string) (*domain.ProviderSettings, error)
	Upsert(ctx context.Context, settings *domain.ProviderSettings) error
}
