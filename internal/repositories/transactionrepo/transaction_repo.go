package transactionrepo

import (
	"context"

	"github.com/tixora/payments/internal/domain/models"
)

type ITransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	GetByInvoiceID(ctx context.Context, invoiceID string) (*models.Transaction, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, metadata map[string]interface{}) error
	GetStats(ctx context.Context) (map[string]interface{}, error)
}
