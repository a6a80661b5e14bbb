package sessionrepo

import (
	"context"

	"github.com/tixora/payments/internal/domain"
)

type ISessionRepository interface {
	Create(ctx context.Context, session *domain.RegistrationSession) error
	// Get returns domain.ErrSessionExpired when the session is missing or
	// its TTL has elapsed.
	Get(ctx context.Context, id string) (*domain.RegistrationSession, error)
	Delete(ctx context.Context, id string) error
}
