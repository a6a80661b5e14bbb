package paymentservice

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
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/internal/ratelimit"
	"github.com/tixora/payments/internal/repositories/sessionrepo"
	"github.com/tixora/payments/internal/repositories/transactionrepo"
	"github.com/tixora/payments/internal/security"
	"github.com/tixora/payments/pkg/config"
	"github.com/tixora/payments/pkg/currency"
	"github.com/tixora/payments/pkg/sanitize"
)

type paymentService struct {
	transactionRepo transactionrepo.ITransactionRepository
	sessionRepo     sessionrepo.ISessionRepository
	gateway         interfaces.PaymentGateway
	resolver        interfaces.SettingsResolver
	limiter         *ratelimit.Limiter
	events          *security.EventLogger
	broadcaster     interfaces.StatusBroadcaster
	cfg             config.PaymentsConfig
	serverCfg       config.ServerConfig
	money           *currency.CurrencyUtils
	logger          zerolog.Logger
}

func NewPaymentService(
	transactionRepo transactionrepo.ITransactionRepository,
	sessionRepo sessionrepo.ISessionRepository,
	gateway interfaces.PaymentGateway,
	resolver interfaces.SettingsResolver,
	limiter *ratelimit.Limiter,
	events *security.EventLogger,
	broadcaster interfaces.StatusBroadcaster,
	cfg config.PaymentsConfig,
	serverCfg config.ServerConfig,
	logger zerolog.Logger,
) IPaymentService {
	return &paymentService{
		transactionRepo: transactionRepo,
		sessionRepo:     sessionRepo,
		gateway:         gateway,
		resolver:        resolver,
		limiter:         limiter,
		events:          events,
		broadcaster:     broadcaster,
		cfg:             cfg,
		serverCfg:       serverCfg,
		money:           currency.NewCurrencyUtils(),
		logger:          logger,
	}
}

func (s *paymentService) Submit(ctx context.Context, req *models.PaymentRequest, client models.ClientInfo) (*models.PaymentResponse, error) {
	return s.process(ctx, req, client, "")
}

func (s *paymentService) Retry(ctx context.Context, req *models.PaymentRequest, client models.ClientInfo) (*models.PaymentResponse, error) {
	return s.process(ctx, req, client, "payment_retry")
}

func (s *paymentService) Switch(ctx context.Context, req *models.PaymentRequest, client models.ClientInfo) (*models.PaymentResponse, error) {
	return s.process(ctx, req, client, "payment_switch")
}

// process drives the intake state machine:
// Initiated -> Sanitized -> Validated -> RateChecked -> Delegated ->
// Completed | Failed.
func (s *paymentService) process(ctx context.Context, req *models.PaymentRequest, client models.ClientInfo, operation string) (*models.PaymentResponse, error) {
	startTime := time.Now()
	requestID := uuid.New().String()

	response := &models.PaymentResponse{
		RequestID:   requestID,
		State:       models.StateInitiated,
		ProcessedAt: time.Now(),
	}

	s.logger.Info().
		Str("request_id", requestID).
		Str("session_id", req.SessionID).
		Str("route", client.Route).
		Msg("Starting payment intake")

	// Registration data lives in the session from the prior step; an
	// expired session means the payment must restart.
	session, err := s.sessionRepo.Get(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return s.fail(response, startTime, "registration session expired, please register again"), domain.ErrSessionExpired
		}
		return nil, err
	}

	// Sanitization never fails; it only cleans.
	sanitized := &models.SanitizedRequest{
		SessionID: req.SessionID,
		Amount:    sanitize.Amount(req.Amount),
		Currency:  sanitize.Currency(req.Currency),
		Method:    sanitize.Method(req.PaymentMethod),
	}
	response.State = models.StateSanitized

	if fieldErrors := Validate(sanitized, s.cfg); fieldErrors != nil {
		s.events.ValidationFailed(client, fieldErrors, map[string]string{
			"amount":         sanitized.Amount,
			"currency":       sanitized.Currency,
			"payment_method": sanitized.Method,
			"email":          session.Email,
			"phone":          session.Phone,
		})
		response.FieldErrors = fieldErrors
		return s.fail(response, startTime, "payment request validation failed"), &domain.ValidationError{Fields: fieldErrors}
	}
	response.State = models.StateValidated

	if operation == "" {
		operation = "card_payment"
		if sanitized.Method == string(models.MethodCrypto) {
			operation = "crypto_payment"
		}
	}
	if err := s.limiter.Check(ctx, operation, client.IP); err != nil {
		s.events.RateLimitHit(client, operation)
		return s.fail(response, startTime, "too many attempts, try again later"), err
	}
	response.State = models.StateRateChecked

	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve gateway credentials: %w", err)
	}

	amountCents, err := s.money.ToCents(sanitized.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to convert amount: %w", err)
	}

	invoice, err := s.gateway.CreateInvoice(ctx, creds, &models.InvoiceRequest{
		OrderID:     session.ID,
		AmountCents: amountCents,
		Currency:    sanitized.Currency,
		Method:      sanitized.Method,
		NotifyURL:   s.serverCfg.BaseURL + "/v1/webhooks/unipayment",
		RedirectURL: s.serverCfg.BaseURL + "/v1/payments/callback",
	})
	response.State = models.StateDelegated
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("session_id", session.ID).
			Msg("Payment delegation failed")
		return s.fail(response, startTime, "payment could not be processed, retry or switch method"), err
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"checkout_url": invoice.CheckoutURL,
		"environment":  creds.Environment,
		"request_id":   requestID,
	})
	transaction := &models.Transaction{
		SessionID:   session.ID,
		InvoiceID:   invoice.InvoiceID,
		Method:      models.PaymentMethod(sanitized.Method),
		AmountCents: amountCents,
		Currency:    sanitized.Currency,
		Status:      models.StatusPending,
		Metadata:    metadata,
	}
	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, err
	}

	response.State = models.StateCompleted
	response.Transaction = transaction
	response.RedirectURL = invoice.CheckoutURL
	response.ProcessingTime = time.Since(startTime)

	s.broadcast("payment_delegated", transaction, "awaiting gateway confirmation")

	s.logger.Info().
		Str("request_id", requestID).
		Str("transaction_id", transaction.ID).
		Str("invoice_id", invoice.InvoiceID).
		Str("amount", s.money.Format(amountCents, sanitized.Currency)).
		Dur("processing_time", response.ProcessingTime).
		Msg("Payment delegated to gateway")

	return response, nil
}

func (s *paymentService) Confirm(ctx context.Context, sessionID string, client models.ClientInfo) (*models.PaymentResponse, error) {
	startTime := time.Now()
	response := &models.PaymentResponse{
		RequestID:   uuid.New().String(),
		State:       models.StateInitiated,
		ProcessedAt: time.Now(),
	}

	if err := s.limiter.Check(ctx, "payment_confirmation", client.IP); err != nil {
		s.events.RateLimitHit(client, "payment_confirmation")
		return s.fail(response, startTime, "too many attempts, try again later"), err
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return s.fail(response, startTime, "registration session expired, please register again"), domain.ErrSessionExpired
		}
		return nil, err
	}

	transactions, err := s.transactionRepo.GetBySessionID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, domain.ErrTransactionNotFound
	}
	transaction := transactions[0]

	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve gateway credentials: %w", err)
	}

	invoice, err := s.gateway.QueryInvoice(ctx, creds, transaction.InvoiceID)
	if err != nil {
		return s.fail(response, startTime, "payment could not be confirmed, retry or switch method"), err
	}

	switch invoice.Status {
	case models.InvoiceStatusConfirmed, models.InvoiceStatusComplete:
		if err := s.transactionRepo.UpdateStatus(ctx, transaction.ID, models.StatusCompleted, map[string]interface{}{
			"confirmed_via": "confirmation",
		}); err != nil {
			return nil, err
		}
		transaction.Status = models.StatusCompleted

		// The session's job is done once payment completes.
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			s.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to destroy session after payment")
		}

		response.State = models.StateCompleted
		response.Transaction = transaction
		response.RedirectURL = "/payments/complete"
		response.ProcessingTime = time.Since(startTime)
		s.broadcast("payment_completed", transaction, "payment confirmed")
		return response, nil

	case models.InvoiceStatusExpired, models.InvoiceStatusInvalid:
		if err := s.transactionRepo.UpdateStatus(ctx, transaction.ID, models.StatusFailed, map[string]interface{}{
			"invoice_status": invoice.Status,
		}); err != nil {
			return nil, err
		}
		transaction.Status = models.StatusFailed
		s.broadcast("payment_failed", transaction, "invoice "+invoice.Status)
		return s.fail(response, startTime, "payment failed, retry or switch method"), nil

	default:
		response.State = models.StateDelegated
		response.Transaction = transaction
		response.Message = "payment still pending at the gateway"
		response.ProcessingTime = time.Since(startTime)
		return response, nil
	}
}

func (s *paymentService) Callback(ctx context.Context, invoiceID string, client models.ClientInfo) (*models.PaymentResponse, error) {
	startTime := time.Now()
	response := &models.PaymentResponse{
		RequestID:   uuid.New().String(),
		State:       models.StateInitiated,
		ProcessedAt: time.Now(),
	}

	if err := s.limiter.Check(ctx, "callback", client.IP); err != nil {
		s.events.RateLimitHit(client, "callback")
		return s.fail(response, startTime, "too many attempts, try again later"), err
	}

	transaction, err := s.transactionRepo.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, domain.ErrTransactionNotFound
	}

	response.Transaction = transaction
	response.ProcessingTime = time.Since(startTime)
	switch transaction.Status {
	case models.StatusCompleted:
		response.State = models.StateCompleted
		response.RedirectURL = "/payments/complete"
	case models.StatusFailed:
		response.State = models.StateFailed
		response.RedirectURL = "/payments/retry"
	default:
		response.State = models.StateDelegated
		response.RedirectURL = "/payments/pending"
	}
	return response, nil
}

func (s *paymentService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

func (s *paymentService) fail(response *models.PaymentResponse, startTime time.Time, message string) *models.PaymentResponse {
	response.State = models.StateFailed
	response.Message = message
	response.ProcessingTime = time.Since(startTime)
	return response
}

func (s *paymentService) broadcast(eventType string, tx *models.Transaction, message string) {
	update := &models.StatusUpdate{
		Type:          eventType,
		TransactionID: tx.ID,
		InvoiceID:     tx.InvoiceID,
		Status:        string(tx.Status),
		Message:       message,
		Timestamp:     time.Now(),
	}
	if err := s.broadcaster.Broadcast(update); err != nil {
		s.logger.Error().Err(err).Msg("Failed to broadcast status update")
	}
}
