package webhookservice

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/internal/infrastructure/kvstore"
	"github.com/tixora/payments/internal/ratelimit"
	"github.com/tixora/payments/internal/repositories/sessionrepo"
	"github.com/tixora/payments/internal/security"
	"github.com/tixora/payments/pkg/config"
)

const testSecret = "whsec_test"

type TransactionRepoMock struct {
	mock.Mock
}

func (m *TransactionRepoMock) Create(ctx context.Context, tx *models.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepoMock) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if tx := args.Get(0); tx != nil {
		return tx.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepoMock) GetByInvoiceID(ctx context.Context, invoiceID string) (*models.Transaction, error) {
	args := m.Called(ctx, invoiceID)
	if tx := args.Get(0); tx != nil {
		return tx.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepoMock) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Transaction, error) {
	args := m.Called(ctx, sessionID)
	if txs := args.Get(0); txs != nil {
		return txs.([]*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepoMock) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, metadata map[string]interface{}) error {
	args := m.Called(ctx, id, status, metadata)
	return args.Error(0)
}

func (m *TransactionRepoMock) GetStats(ctx context.Context) (map[string]interface{}, error) {
	args := m.Called(ctx)
	if stats := args.Get(0); stats != nil {
		return stats.(map[string]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) Broadcast(update *models.StatusUpdate) error {
	args := m.Called(update)
	return args.Error(0)
}

func (m *BroadcasterMock) GetClientCount() int {
	args := m.Called()
	return args.Int(0)
}

type staticResolver struct {
	creds domain.GatewayCredentials
}

func (r *staticResolver) Resolve(context.Context) (domain.GatewayCredentials, error) {
	return r.creds, nil
}

type webhookHarness struct {
	svc         IWebhookService
	repo        *TransactionRepoMock
	broadcaster *BroadcasterMock
	sessions    sessionrepo.ISessionRepository
	store       *kvstore.MemoryStore
}

func newHarness(t *testing.T) *webhookHarness {
	t.Helper()

	store := kvstore.NewMemory()
	sessions := sessionrepo.New(store, 30*time.Minute, zerolog.Nop())
	limiter := ratelimit.New(store, config.DefaultRateLimits(), zerolog.Nop())
	events := security.NewEventLogger(zerolog.Nop())

	repo := new(TransactionRepoMock)
	broadcaster := new(BroadcasterMock)
	broadcaster.On("Broadcast", mock.Anything).Return(nil).Maybe()

	svc := NewWebhookService(
		repo,
		sessions,
		&staticResolver{creds: domain.GatewayCredentials{WebhookSecret: testSecret}},
		store,
		limiter,
		events,
		broadcaster,
		zerolog.Nop(),
	)

	return &webhookHarness{
		svc:         svc,
		repo:        repo,
		broadcaster: broadcaster,
		sessions:    sessions,
		store:       store,
	}
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func delivery(body []byte, signature string) *models.WebhookEvent {
	return &models.WebhookEvent{
		RawBody:    body,
		Signature:  signature,
		ReceivedAt: time.Now(),
		Client:     models.ClientInfo{IP: "198.51.100.4", UserAgent: "UniPayment-Webhook/1.0", Route: "webhooks.unipayment"},
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	body := []byte(`{"invoice_id":"inv-1"}`)
	require.True(t, Verify(body, sign(body, testSecret), testSecret))
	require.False(t, Verify(body, sign(body, "other-secret"), testSecret))
	require.False(t, Verify(body, "", testSecret))
	require.False(t, Verify(body, sign(body, testSecret), ""))
}

func TestHandleNotification_CompletesTransaction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	session := &domain.RegistrationSession{EventID: "evt-1", Email: "jane.doe@example.com"}
	require.NoError(t, h.sessions.Create(ctx, session))

	h.repo.On("GetByInvoiceID", ctx, "inv-1").Return(&models.Transaction{
		ID:        "tx-1",
		SessionID: session.ID,
		InvoiceID: "inv-1",
		Status:    models.StatusPending,
	}, nil)
	h.repo.On("UpdateStatus", ctx, "tx-1", models.StatusCompleted, mock.Anything).Return(nil)

	body := []byte(`{"invoice_id":"inv-1","order_id":"ord-1","event_type":"invoice_updated","status":"Confirmed"}`)
	err := h.svc.HandleNotification(ctx, delivery(body, sign(body, testSecret)))
	require.NoError(t, err)

	h.repo.AssertCalled(t, "UpdateStatus", ctx, "tx-1", models.StatusCompleted, mock.Anything)
	h.broadcaster.AssertCalled(t, "Broadcast", mock.Anything)

	// Completion destroys the registration session.
	_, err = h.sessions.Get(ctx, session.ID)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestHandleNotification_FailsTransaction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	h.repo.On("GetByInvoiceID", ctx, "inv-2").Return(&models.Transaction{
		ID:        "tx-2",
		InvoiceID: "inv-2",
		Status:    models.StatusPending,
	}, nil)
	h.repo.On("UpdateStatus", ctx, "tx-2", models.StatusFailed, mock.Anything).Return(nil)

	body := []byte(`{"invoice_id":"inv-2","event_type":"invoice_expired","status":"Expired"}`)
	require.NoError(t, h.svc.HandleNotification(ctx, delivery(body, sign(body, testSecret))))
	h.repo.AssertCalled(t, "UpdateStatus", ctx, "tx-2", models.StatusFailed, mock.Anything)
}

func TestHandleNotification_TamperedBody(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	body := []byte(`{"invoice_id":"inv-1","status":"Confirmed"}`)
	signature := sign(body, testSecret)
	tampered := []byte(`{"invoice_id":"inv-1","status":"Confirmed","amount":"0.01"}`)

	err := h.svc.HandleNotification(ctx, delivery(tampered, signature))
	require.ErrorIs(t, err, domain.ErrSignatureMismatch)

	// A rejected delivery must not touch any transaction.
	h.repo.AssertNotCalled(t, "GetByInvoiceID", mock.Anything, mock.Anything)
	h.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleNotification_DuplicateDelivery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	h.repo.On("GetByInvoiceID", ctx, "inv-1").Return(&models.Transaction{
		ID:        "tx-1",
		InvoiceID: "inv-1",
		Status:    models.StatusPending,
	}, nil)
	h.repo.On("UpdateStatus", ctx, "tx-1", models.StatusCompleted, mock.Anything).Return(nil)

	body := []byte(`{"invoice_id":"inv-1","status":"Confirmed"}`)
	event := delivery(body, sign(body, testSecret))

	require.NoError(t, h.svc.HandleNotification(ctx, event))
	require.NoError(t, h.svc.HandleNotification(ctx, event))
	require.NoError(t, h.svc.HandleNotification(ctx, event))

	// Only the first delivery is applied.
	h.repo.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestHandleNotification_RedeliveryRetriesFailedApply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	h.repo.On("GetByInvoiceID", ctx, "inv-1").Return(&models.Transaction{
		ID:        "tx-1",
		InvoiceID: "inv-1",
		Status:    models.StatusPending,
	}, nil)
	h.repo.On("UpdateStatus", ctx, "tx-1", models.StatusCompleted, mock.Anything).Return(errors.New("deadlock detected")).Once()
	h.repo.On("UpdateStatus", ctx, "tx-1", models.StatusCompleted, mock.Anything).Return(nil)

	body := []byte(`{"invoice_id":"inv-1","status":"Confirmed"}`)
	event := delivery(body, sign(body, testSecret))

	// A failed apply must not consume the delivery: the identical
	// redelivery has to go through and settle the transaction.
	require.Error(t, h.svc.HandleNotification(ctx, event))
	require.NoError(t, h.svc.HandleNotification(ctx, event))
	h.repo.AssertNumberOfCalls(t, "UpdateStatus", 2)
}

func TestHandleNotification_RedeliveryAfterUnknownInvoice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	// The webhook can race the transaction insert; once the row exists
	// the redelivery must still be applied.
	h.repo.On("GetByInvoiceID", ctx, "inv-1").Return(nil, nil).Once()
	h.repo.On("GetByInvoiceID", ctx, "inv-1").Return(&models.Transaction{
		ID:        "tx-1",
		InvoiceID: "inv-1",
		Status:    models.StatusPending,
	}, nil)
	h.repo.On("UpdateStatus", ctx, "tx-1", models.StatusCompleted, mock.Anything).Return(nil)

	body := []byte(`{"invoice_id":"inv-1","status":"Confirmed"}`)
	event := delivery(body, sign(body, testSecret))

	require.ErrorIs(t, h.svc.HandleNotification(ctx, event), domain.ErrTransactionNotFound)
	require.NoError(t, h.svc.HandleNotification(ctx, event))
	h.repo.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestHandleNotification_SettledTransactionNeverRegresses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	h.repo.On("GetByInvoiceID", ctx, "inv-1").Return(&models.Transaction{
		ID:        "tx-1",
		InvoiceID: "inv-1",
		Status:    models.StatusCompleted,
	}, nil)

	// A different payload for the same invoice dodges the delivery marker
	// but still may not move a settled transaction.
	body := []byte(`{"invoice_id":"inv-1","status":"Expired"}`)
	require.NoError(t, h.svc.HandleNotification(ctx, delivery(body, sign(body, testSecret))))
	h.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleNotification_UnknownInvoice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	h.repo.On("GetByInvoiceID", ctx, "inv-404").Return(nil, nil)

	body := []byte(`{"invoice_id":"inv-404","status":"Confirmed"}`)
	err := h.svc.HandleNotification(ctx, delivery(body, sign(body, testSecret)))
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestHandleNotification_NonTerminalStatusIgnored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)

	h.repo.On("GetByInvoiceID", ctx, "inv-1").Return(&models.Transaction{
		ID:        "tx-1",
		InvoiceID: "inv-1",
		Status:    models.StatusPending,
	}, nil)

	body := []byte(`{"invoice_id":"inv-1","status":"Paid"}`)
	require.NoError(t, h.svc.HandleNotification(ctx, delivery(body, sign(body, testSecret))))
	h.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
