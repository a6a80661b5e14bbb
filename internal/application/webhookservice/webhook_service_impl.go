package webhookservice

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/interfaces"
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/internal/ratelimit"
	"github.com/tixora/payments/internal/repositories/sessionrepo"
	"github.com/tixora/payments/internal/repositories/transactionrepo"
	"github.com/tixora/payments/internal/security"
)

// markerTTL bounds how long a processed-delivery marker is retained.
const markerTTL = 24 * time.Hour

type webhookService struct {
	transactionRepo transactionrepo.ITransactionRepository
	sessionRepo     sessionrepo.ISessionRepository
	resolver        interfaces.SettingsResolver
	store           interfaces.KVStore
	limiter         *ratelimit.Limiter
	events          *security.EventLogger
	broadcaster     interfaces.StatusBroadcaster
	logger          zerolog.Logger
}

func NewWebhookService(
	transactionRepo transactionrepo.ITransactionRepository,
	sessionRepo sessionrepo.ISessionRepository,
	resolver interfaces.SettingsResolver,
	store interfaces.KVStore,
	limiter *ratelimit.Limiter,
	events *security.EventLogger,
	broadcaster interfaces.StatusBroadcaster,
	logger zerolog.Logger,
) IWebhookService {
	return &webhookService{
		transactionRepo: transactionRepo,
		sessionRepo:     sessionRepo,
		resolver:        resolver,
		store:           store,
		limiter:         limiter,
		events:          events,
		broadcaster:     broadcaster,
		logger:          logger,
	}
}

// Verify recomputes the HMAC-SHA256 hex digest of rawBody under secret and
// compares it to the signature header in constant time.
func Verify(rawBody []byte, signatureHeader, secret string) bool {
	if signatureHeader == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

func (s *webhookService) HandleNotification(ctx context.Context, event *models.WebhookEvent) error {
	if err := s.limiter.Check(ctx, "webhook", event.Client.IP); err != nil {
		s.events.RateLimitHit(event.Client, "webhook")
		return err
	}

	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve gateway credentials: %w", err)
	}

	valid := Verify(event.RawBody, event.Signature, creds.WebhookSecret)

	// Policy: every delivery is logged, valid or not.
	s.events.WebhookReceived(event.Client, len(event.RawBody), valid)

	if !valid {
		s.events.SignatureViolation(event.Client)
		return domain.ErrSignatureMismatch
	}

	var notify models.InvoiceNotify
	if err := json.Unmarshal(event.RawBody, &notify); err != nil {
		return fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if notify.InvoiceID == "" {
		return fmt.Errorf("webhook payload missing invoice_id")
	}

	// First idempotency guard: a delivery is identified by its invoice and
	// payload checksum; redeliveries hit the existing marker and stop. The
	// marker is released again on any failed apply so the gateway's
	// redelivery gets another chance.
	checksum := sha256.Sum256(event.RawBody)
	marker := fmt.Sprintf("webhook:%s:%s", notify.InvoiceID, hex.EncodeToString(checksum[:8]))
	markerSet := false
	first, err := s.store.SetNX(ctx, marker, "1", markerTTL)
	if err != nil {
		s.logger.Error().Err(err).Str("invoice_id", notify.InvoiceID).Msg("Idempotency store unavailable, relying on status guard")
	} else if !first {
		s.logger.Info().Str("invoice_id", notify.InvoiceID).Msg("Duplicate webhook delivery ignored")
		return nil
	} else {
		markerSet = true
	}

	transaction, err := s.transactionRepo.GetByInvoiceID(ctx, notify.InvoiceID)
	if err != nil {
		s.releaseMarker(ctx, marker, markerSet)
		return err
	}
	if transaction == nil {
		s.releaseMarker(ctx, marker, markerSet)
		return domain.ErrTransactionNotFound
	}

	// Second idempotency guard: terminal transactions never regress.
	if transaction.Status.Terminal() {
		s.logger.Info().
			Str("invoice_id", notify.InvoiceID).
			Str("status", string(transaction.Status)).
			Msg("Webhook for settled transaction ignored")
		return nil
	}

	status, ok := targetStatus(notify.Status)
	if !ok {
		s.logger.Info().
			Str("invoice_id", notify.InvoiceID).
			Str("invoice_status", notify.Status).
			Msg("Webhook carries no terminal status, nothing to apply")
		return nil
	}

	if err := s.transactionRepo.UpdateStatus(ctx, transaction.ID, status, map[string]interface{}{
		"confirmed_via":  "webhook",
		"invoice_status": notify.Status,
		"event_type":     notify.EventType,
	}); err != nil {
		s.releaseMarker(ctx, marker, markerSet)
		return err
	}
	transaction.Status = status

	if status == models.StatusCompleted && transaction.SessionID != "" {
		if err := s.sessionRepo.Delete(ctx, transaction.SessionID); err != nil {
			s.logger.Error().Err(err).Str("session_id", transaction.SessionID).Msg("Failed to destroy session after webhook completion")
		}
	}

	s.broadcast(transaction, notify.Status)

	s.logger.Info().
		Str("invoice_id", notify.InvoiceID).
		Str("transaction_id", transaction.ID).
		Str("status", string(status)).
		Msg("Webhook applied")

	return nil
}

// releaseMarker undoes a processed marker whose delivery was not in fact
// applied, so the transaction is not stuck when the gateway redelivers.
func (s *webhookService) releaseMarker(ctx context.Context, marker string, set bool) {
	if !set {
		return
	}
	if err := s.store.Del(ctx, marker); err != nil {
		s.logger.Error().Err(err).Str("marker", marker).Msg("Failed to release webhook delivery marker")
	}
}

func targetStatus(invoiceStatus string) (models.TransactionStatus, bool) {
	switch invoiceStatus {
	case models.InvoiceStatusConfirmed, models.InvoiceStatusComplete:
		return models.StatusCompleted, true
	case models.InvoiceStatusExpired, models.InvoiceStatusInvalid:
		return models.StatusFailed, true
	default:
		return "", false
	}
}

func (s *webhookService) broadcast(tx *models.Transaction, invoiceStatus string) {
	update := &models.StatusUpdate{
		Type:          "webhook_applied",
		TransactionID: tx.ID,
		InvoiceID:     tx.InvoiceID,
		Status:        string(tx.Status),
		Message:       "gateway reported " + invoiceStatus,
		Timestamp:     time.Now(),
	}
	if err := s.broadcaster.Broadcast(update); err != nil {
		s.logger.Error().Err(err).Msg("Failed to broadcast status update")
	}
}
