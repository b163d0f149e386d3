package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventInvoiceCreated         EventType = "invoice_created"
	EventPurchaseOrderCreated   EventType = "purchase_order_created"
	EventPasswordResetRequested EventType = "password_reset_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RecordID  string      `json:"record_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// InvoiceCreatedPayload payload.
type InvoiceCreatedPayload struct {
	InvoiceNumber  string  `json:"invoice_number"`
	RecipientID    string  `json:"recipient_id"`
	RecipientEmail string  `json:"recipient_email"`
	Total          float64 `json:"total"`
	PONumber       string  `json:"po_number,omitempty"`
}

// PurchaseOrderCreatedPayload payload.
type PurchaseOrderCreatedPayload struct {
	PONumber     string `json:"po_number"`
	VendorID     string `json:"vendor_id"`
	VendorEmail  string `json:"vendor_email"`
	ProductCount int    `json:"product_count"`
}

// PasswordResetRequestedPayload payload. The token travels only to the
// delivery channel, never into logs.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
