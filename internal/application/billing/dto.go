package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// IssueInvoiceRequest contains the data needed to issue an invoice.
// Amount falls back to the client's monthly fee when zero.
type IssueInvoiceRequest struct {
	ClientID uuid.UUID       `json:"client_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  *time.Time      `json:"due_date"`
}

// InvoiceResponse is the API representation of an invoice
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	Status        string          `json:"status"`
	PaidAt        *time.Time      `json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecordPaymentRequest contains the data needed to record a payment
type RecordPaymentRequest struct {
	ClientID      uuid.UUID       `json:"client_id" binding:"required"`
	InvoiceID     *uuid.UUID      `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Method        string          `json:"method" binding:"required,oneof=mpesa cash bank card"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes"`
	PaymentDate   *time.Time      `json:"payment_date"`
}

// PaymentResponse is the API representation of a payment
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	InvoiceID     *uuid.UUID      `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes"`
	PaymentDate   time.Time       `json:"payment_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecordPaymentResult carries the recorded payment and reconciliation
// outcome. Duplicate reports the idempotent-replay case where the
// payment had already been processed.
type RecordPaymentResult struct {
	Payment        PaymentResponse `json:"payment"`
	NewBalance     decimal.Decimal `json:"new_balance"`
	BalanceStatus  string          `json:"balance_status"`
	SettledInvoice string          `json:"settled_invoice,omitempty"`
	Duplicate      bool            `json:"duplicate"`
}

// ToInvoiceResponse converts a domain invoice to its API representation
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		ClientID:      inv.ClientID,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
		PaidAt:        inv.PaidAt,
		CreatedAt:     inv.CreatedAt,
	}
}

// ToPaymentResponse converts a domain payment to its API representation
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		ClientID:      p.ClientID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		Method:        string(p.Method),
		TransactionID: p.TransactionID,
		Notes:         p.Notes,
		PaymentDate:   p.PaymentDate,
		CreatedAt:     p.CreatedAt,
	}
}
