// Package ratelimit counts attempts per (operation, client) bucket against
// a fixed decay window. The first attempt in a window creates the counter
// with the window's TTL; the window expires relative to that first attempt.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/interfaces"
	"github.com/tixora/payments/pkg/config"
)

type Limiter struct {
	store  interfaces.KVStore
	rules  map[string]config.RateLimitRule
	logger zerolog.Logger
}

func New(store interfaces.KVStore, rules map[string]config.RateLimitRule, logger zerolog.Logger) *Limiter {
	return &Limiter{
		store:  store,
		rules:  rules,
		logger: logger,
	}
}

// Check records one attempt for (operation, clientKey) and returns
// domain.ErrRateLimited once the operation's attempt budget is exhausted
// for the current window. Operations without a configured rule are allowed.
func (l *Limiter) Check(ctx context.Context, operation, clientKey string) error {
	rule, ok := l.rules[operation]
	if !ok {
		return nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", operation, clientKey)
	count, err := l.store.Incr(ctx, key, time.Duration(rule.DecayMinutes)*time.Minute)
	if err != nil {
		// A broken store must not take payments down with it.
		l.logger.Error().Err(err).Str("operation", operation).Msg("Rate limit store unavailable, allowing request")
		return nil
	}

	if count > int64(rule.MaxAttempts) {
		l.logger.Warn().
			Str("operation", operation).
			Str("client_key", clientKey).
			Int64("attempts", count).
			Int("max_attempts", rule.MaxAttempts).
			Msg("Rate limit exceeded")
		return domain.ErrRateLimited
	}

	return nil
}

// Rule exposes the configured budget for an operation, for the Retry-After
// header and the admin status endpoint.
func (l *Limiter) Rule(operation string) (config.RateLimitRule, bool) {
	rule, ok := l.rules[operation]
	return rule, ok
}
