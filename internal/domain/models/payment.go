package models

import (
	"encoding/json"
	"time"
)

// PaymentMethod represents supported payment methods
type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodCrypto PaymentMethod = "crypto"
)

// TransactionStatus represents the lifecycle status of a transaction
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Terminal reports whether a status can no longer change.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// PaymentState tracks a request's progress through the intake pipeline.
type PaymentState string

const (
	StateInitiated   PaymentState = "initiated"
	StateSanitized   PaymentState = "sanitized"
	StateValidated   PaymentState = "validated"
	StateRateChecked PaymentState = "rate_checked"
	StateDelegated   PaymentState = "delegated"
	StateCompleted   PaymentState = "completed"
	StateFailed      PaymentState = "failed"
)

// PaymentRequest is the raw submission as received from the client. It is
// transient: it exists only for the duration of one request cycle.
type PaymentRequest struct {
	SessionID     string `json:"session_id" binding:"required"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
}

// SanitizedRequest is the normalized form that feeds validation.
type SanitizedRequest struct {
	SessionID string
	Amount    string
	Currency  string
	Method    string
}

// ClientInfo tags a request with its origin for rate limiting and
// security logging.
type ClientInfo struct {
	IP        string
	UserAgent string
	Route     string
}

// Transaction is the downstream record created once validation and
// delegation succeed.
type Transaction struct {
	ID          string            `json:"id" db:"id"`
	SessionID   string            `json:"session_id" db:"session_id"`
	InvoiceID   string            `json:"invoice_id" db:"invoice_id"`
	Method      PaymentMethod     `json:"payment_method" db:"payment_method"`
	AmountCents int64             `json:"amount_cents" db:"amount_cents"`
	Currency    string            `json:"currency" db:"currency"`
	Status      TransactionStatus `json:"status" db:"status"`
	Metadata    json.RawMessage   `json:"metadata" db:"metadata"`
	CompletedAt *time.Time        `json:"completed_at" db:"completed_at"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// PaymentResponse is the orchestrator's answer to a payment submission.
type PaymentResponse struct {
	RequestID      string              `json:"request_id"`
	State          PaymentState        `json:"state"`
	Transaction    *Transaction        `json:"transaction,omitempty"`
	RedirectURL    string              `json:"redirect_url,omitempty"`
	FieldErrors    map[string][]string `json:"field_errors,omitempty"`
	Message        string              `json:"message,omitempty"`
	ProcessedAt    time.Time           `json:"processed_at"`
	ProcessingTime time.Duration       `json:"processing_time"`
}

// InvoiceRequest is the payload handed to the external gateway.
type InvoiceRequest struct {
	OrderID     string `json:"order_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Method      string `json:"payment_method"`
	NotifyURL   string `json:"notify_url"`
	RedirectURL string `json:"redirect_url"`
}

// Invoice is the gateway's view of a charge.
type Invoice struct {
	InvoiceID   string `json:"invoice_id"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url"`
}

// StatusUpdate is a real-time payment status event pushed to connected
// confirmation pages.
type StatusUpdate struct {
	Type          string      `json:"type"`
	TransactionID string      `json:"transaction_id,omitempty"`
	InvoiceID     string      `json:"invoice_id,omitempty"`
	Status        string      `json:"status"`
	Message       string      `json:"message,omitempty"`
	Data          interface{} `json:"data,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}
