package models

import "time"

// WebhookEvent captures one gateway delivery: the raw payload bytes plus
// the signature header value. Every delivery is logged regardless of
// whether the signature verifies.
type WebhookEvent struct {
	RawBody    []byte
	Signature  string
	ReceivedAt time.Time
	Client     ClientInfo
}

// InvoiceNotify is the parsed body of a verified gateway webhook.
type InvoiceNotify struct {
	InvoiceID string `json:"invoice_id"`
	OrderID   string `json:"order_id"`
	EventType string `json:"event_type"`
	Status    string `json:"status"`
}

// Gateway invoice statuses that map onto transaction outcomes.
const (
	InvoiceStatusConfirmed = "Confirmed"
	InvoiceStatusComplete  = "Complete"
	InvoiceStatusExpired   = "Expired"
	InvoiceStatusInvalid   = "Invalid"
)
