package billing

import (
	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeInvoice = "Invoice"

// Event types
const (
	EventTypeInvoiceCreated = "InvoiceCreated"
	EventTypeInvoicePaid    = "InvoicePaid"
)

// InvoiceCreatedEvent is published when a new invoice is issued
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID       `json:"client_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewInvoiceCreatedEvent creates an invoice created event
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		ClientID:        inv.ClientID,
		Amount:          inv.Amount,
	}
}

// InvoicePaidEvent is published when an invoice is settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	ClientID      uuid.UUID       `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewInvoicePaidEvent creates an invoice paid event
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		ClientID:        inv.ClientID,
		InvoiceNumber:   inv.InvoiceNumber,
		Amount:          inv.Amount,
	}
}
