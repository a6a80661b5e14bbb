package transactionrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sqlc-dev/pqtype"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/internal/infrastructure/database"
)

type transactionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) ITransactionRepository {
	return &transactionRepository{
		db:     db.Db,
		logger: logger,
	}
}

const transactionColumns = `id, session_id, invoice_id, payment_method, amount_cents, currency, status, metadata, completed_at, created_at, updated_at`

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	txID, err := uuid.Parse(tx.ID)
	if err != nil {
		return fmt.Errorf("invalid transaction id %q: %w", tx.ID, err)
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.ExecContext(ctx, query,
		txID,
		tx.SessionID,
		tx.InvoiceID,
		string(tx.Method),
		tx.AmountCents,
		tx.Currency,
		string(tx.Status),
		pqtype.NullRawMessage{RawMessage: tx.Metadata, Valid: tx.Metadata != nil},
		sql.NullTime{Time: timeOrZero(tx.CompletedAt), Valid: tx.CompletedAt != nil},
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("invoice_id", tx.InvoiceID).Msg("Failed to create transaction")
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	// IDs arrive from URL paths; anything that is not a UUID cannot name
	// a transaction.
	txID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := r.scanOne(r.db.QueryRowContext(ctx, query, txID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("id", id).Msg("Failed to get transaction by ID")
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}
	return tx, nil
}

func (r *transactionRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE invoice_id = $1`
	tx, err := r.scanOne(r.db.QueryRowContext(ctx, query, invoiceID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("invoice_id", invoiceID).Msg("Failed to get transaction by invoice ID")
		return nil, fmt.Errorf("failed to get transaction by invoice ID: %w", err)
	}
	return tx, nil
}

func (r *transactionRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE session_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to get transactions by session")
		return nil, fmt.Errorf("failed to get transactions by session: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return transactions, nil
}

// UpdateStatus moves a transaction to status and merges metadata. Terminal
// states never regress: the guard in the WHERE clause makes re-applied
// webhooks a no-op.
func (r *transactionRepository) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, metadata map[string]interface{}) error {
	txID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrTransactionNotFound
	}

	var metadataJSON []byte
	if metadata != nil {
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	var completedAt sql.NullTime
	if status == models.StatusCompleted {
		completedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	query := `UPDATE transactions
		SET status = $2,
		    metadata = COALESCE($3, metadata),
		    completed_at = COALESCE($4, completed_at),
		    updated_at = $5
		WHERE id = $1 AND status NOT IN ('completed', 'failed')`

	_, err = r.db.ExecContext(ctx, query,
		txID,
		string(status),
		pqtype.NullRawMessage{RawMessage: metadataJSON, Valid: metadataJSON != nil},
		completedAt,
		time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id).Str("status", string(status)).Msg("Failed to update transaction status")
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	query := `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'completed'),
		COUNT(*) FILTER (WHERE status = 'failed'),
		COALESCE(SUM(amount_cents) FILTER (WHERE status = 'completed'), 0)
		FROM transactions`

	var total, pending, completed, failed, completedCents int64
	err := r.db.QueryRowContext(ctx, query).Scan(&total, &pending, &completed, &failed, &completedCents)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to get transaction stats")
		return nil, fmt.Errorf("failed to get transaction stats: %w", err)
	}

	return map[string]interface{}{
		"total_transactions":     total,
		"pending_count":          pending,
		"completed_count":        completed,
		"failed_count":           failed,
		"completed_amount_cents": completedCents,
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *transactionRepository) scanOne(row rowScanner) (*models.Transaction, error) {
	var (
		id          uuid.UUID
		method      string
		status      string
		metadata    pqtype.NullRawMessage
		completedAt sql.NullTime
		tx          models.Transaction
	)

	err := row.Scan(
		&id,
		&tx.SessionID,
		&tx.InvoiceID,
		&method,
		&tx.AmountCents,
		&tx.Currency,
		&status,
		&metadata,
		&completedAt,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.ID = id.String()
	tx.Method = models.PaymentMethod(method)
	tx.Status = models.TransactionStatus(status)
	if metadata.Valid {
		tx.Metadata = metadata.RawMessage
	}
	if completedAt.Valid {
		tx.CompletedAt = &completedAt.Time
	}

	return &tx, nil
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
