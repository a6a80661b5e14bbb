package paymentservice

import (
	"context"

	"github.com/tixora/payments/internal/domain/models"
)

// IPaymentService sequences payment intake: sanitize, validate, rate-limit
// check, delegate to the external gateway, record the transaction, log the
// outcome.
type IPaymentService interface {
	// Submit handles a first payment attempt for a registration session.
	Submit(ctx context.Context, req *models.PaymentRequest, client models.ClientInfo) (*models.PaymentResponse, error)
	// Retry re-runs intake after a failed delegation, on the user's
	// explicit request.
	Retry(ctx context.Context, req *models.PaymentRequest, client models.ClientInfo) (*models.PaymentResponse, error)
	// Switch re-runs intake with a different payment method.
	Switch(ctx context.Context, req *models.PaymentRequest, client models.ClientInfo) (*models.PaymentResponse, error)
	// Confirm checks the gateway's view of the session's pending invoice
	// and completes the transaction. No request body: registration data is
	// already in the session.
	Confirm(ctx context.Context, sessionID string, client models.ClientInfo) (*models.PaymentResponse, error)
	// Callback handles the browser's return from the gateway checkout.
	Callback(ctx context.Context, invoiceID string, client models.ClientInfo) (*models.PaymentResponse, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
}
