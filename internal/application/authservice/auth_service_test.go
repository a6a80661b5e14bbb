package authservice

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret"},
		Admin: config.AdminConfig{Email: "admin@tixora.io", Password: "s3cret"},
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewAuthService(testConfig(), zerolog.Nop())

	require.NoError(t, svc.Authenticate(ctx, "admin@tixora.io", "s3cret"))
	require.ErrorIs(t, svc.Authenticate(ctx, "admin@tixora.io", "wrong"), domain.ErrInvalidCredentials)
	require.ErrorIs(t, svc.Authenticate(ctx, "other@tixora.io", "s3cret"), domain.ErrInvalidCredentials)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewAuthService(testConfig(), zerolog.Nop())

	token, err := svc.IssueSession(ctx, "admin@tixora.io")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claim, err := svc.VerifyToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "admin@tixora.io", claim.Email)
	require.Equal(t, "admin", claim.Role)
	require.Equal(t, "tixora", claim.Issuer)
}

func TestAuthService_VerifyRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewAuthService(testConfig(), zerolog.Nop())

	token, err := svc.IssueSession(ctx, "admin@tixora.io")
	require.NoError(t, err)

	_, err = svc.VerifyToken(ctx, token+"x")
	require.Error(t, err)
}

func TestAuthService_RedirectTarget(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(testConfig(), zerolog.Nop())

	require.Equal(t, "/admin/login", svc.RedirectTarget(nil))
	require.Equal(t, "/admin/settings", svc.RedirectTarget(&domain.Claim{Email: "admin@tixora.io"}))
}
