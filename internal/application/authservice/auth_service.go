package authservice

import (
	"context"

	"github.com/tixora/payments/internal/domain"
)

// IAuthService is the standalone admin authentication service: explicit
// authenticate / issue-session / verify operations instead of inherited
// framework behavior.
type IAuthService interface {
	Authenticate(ctx context.Context, email, password string) error
	IssueSession(ctx context.Context, email string) (string, error)
	VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error)
	RedirectTarget(claim *domain.Claim) string
}
