package paymentservice

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/models"
)

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) CreateInvoice(ctx context.Context, creds domain.GatewayCredentials, req *models.InvoiceRequest) (*models.Invoice, error) {
	args := m.Called(ctx, creds, req)
	if inv := args.Get(0); inv != nil {
		return inv.(*models.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GatewayMock) QueryInvoice(ctx context.Context, creds domain.GatewayCredentials, invoiceID string) (*models.Invoice, error) {
	args := m.Called(ctx, creds, invoiceID)
	if inv := args.Get(0); inv != nil {
		return inv.(*models.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GatewayMock) Ping(ctx context.Context, creds domain.GatewayCredentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

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

// staticResolver returns fixed credentials, bypassing the settings table.
type staticResolver struct {
	creds domain.GatewayCredentials
}

func (r *staticResolver) Resolve(context.Context) (domain.GatewayCredentials, error) {
	return r.creds, nil
}
