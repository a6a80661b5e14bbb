package sessionrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/interfaces"
)

type sessionRepository struct {
	store  interfaces.KVStore
	ttl    time.Duration
	logger zerolog.Logger
}

// New builds the registration-session store. Sessions live in the KV store
// under the configured TTL; expiry is the store's job, not ours.
func New(store interfaces.KVStore, ttl time.Duration, logger zerolog.Logger) ISessionRepository {
	return &sessionRepository{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.RegistrationSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.store.Set(ctx, sessionKey(session.ID), string(data), r.ttl); err != nil {
		r.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to store registration session")
		return fmt.Errorf("failed to store registration session: %w", err)
	}

	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.RegistrationSession, error) {
	data, err := r.store.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, domain.ErrSessionExpired
		}
		r.logger.Error().Err(err).Str("session_id", id).Msg("Failed to load registration session")
		return nil, fmt.Errorf("failed to load registration session: %w", err)
	}

	var session domain.RegistrationSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, sessionKey(id)); err != nil {
		r.logger.Error().Err(err).Str("session_id", id).Msg("Failed to delete registration session")
		return fmt.Errorf("failed to delete registration session: %w", err)
	}
	return nil
}
