package settingsservice

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/pkg/config"
)

type SettingsRepoMock struct {
	mock.Mock
}

func (m *SettingsRepoMock) Get(ctx context.Context, provider string) (*domain.ProviderSettings, error) {
	args := m.Called(ctx, provider)
	if s := args.Get(0); s != nil {
		return s.(*domain.ProviderSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SettingsRepoMock) Upsert(ctx context.Context, settings *domain.ProviderSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func staticConfig() config.GatewayConfig {
	return config.GatewayConfig{
		BaseURL:       "https://api.example",
		AppID:         "static-app",
		APIKey:        "static-key",
		WebhookSecret: "static-secret",
		Environment:   "sandbox",
	}
}

func TestResolver_EnabledRowWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := new(SettingsRepoMock)
	repo.On("Get", ctx, ProviderUniPayment).Return(&domain.ProviderSettings{
		AppID:         "db-app",
		APIKey:        "db-key",
		WebhookSecret: "db-secret",
		Environment:   "production",
		Enabled:       true,
	}, nil)

	creds, err := New(repo, staticConfig(), zerolog.Nop()).Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, "db-app", creds.AppID)
	require.Equal(t, "db-key", creds.APIKey)
	require.Equal(t, "db-secret", creds.WebhookSecret)
	require.Equal(t, "production", creds.Environment)
	require.Equal(t, "https://api.example", creds.BaseURL)
}

func TestResolver_DisabledRowFallsThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := new(SettingsRepoMock)
	repo.On("Get", ctx, ProviderUniPayment).Return(&domain.ProviderSettings{
		AppID:   "db-app",
		Enabled: false,
	}, nil)

	creds, err := New(repo, staticConfig(), zerolog.Nop()).Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, "static-app", creds.AppID)
	require.Equal(t, "static-key", creds.APIKey)
}

func TestResolver_MissingRowFallsThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := new(SettingsRepoMock)
	repo.On("Get", ctx, ProviderUniPayment).Return(nil, nil)

	creds, err := New(repo, staticConfig(), zerolog.Nop()).Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, "static-app", creds.AppID)
}

func TestResolver_RepoErrorFallsThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := new(SettingsRepoMock)
	repo.On("Get", ctx, ProviderUniPayment).Return(nil, errors.New("db down"))

	creds, err := New(repo, staticConfig(), zerolog.Nop()).Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, "static-app", creds.AppID)
}
