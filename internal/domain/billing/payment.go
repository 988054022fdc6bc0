package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was collected
type PaymentMethod string

const (
	PaymentMethodMpesa PaymentMethod = "mpesa"
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodBank  PaymentMethod = "bank"
	PaymentMethodCard  PaymentMethod = "card"
)

// IsValid checks whether the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodMpesa, PaymentMethodCash, PaymentMethodBank, PaymentMethodCard:
		return true
	}
	return false
}

// Payment is an immutable record of money received from a client.
// TransactionID carries the gateway reference (M-Pesa receipt number)
// and doubles as the idempotency key for webhook retries.
type Payment struct {
	shared.BaseEntity
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     *uuid.UUID      `gorm:"type:uuid;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Method        PaymentMethod   `gorm:"type:varchar(20);not null"`
	TransactionID string          `gorm:"type:varchar(100);index"`
	Notes         string          `gorm:"type:text"`
	PaymentDate   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment record
func NewPayment(clientID uuid.UUID, invoiceID *uuid.UUID, amount decimal.Decimal, method PaymentMethod, transactionID, notes string, at time.Time) (*Payment, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Payment must belong to a client")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unsupported payment method")
	}
	if at.IsZero() {
		at = time.Now()
	}

	return &Payment{
		BaseEntity:    shared.NewBaseEntity(),
		ClientID:      clientID,
		InvoiceID:     invoiceID,
		Amount:        amount,
		Method:        method,
		TransactionID: transactionID,
		Notes:         notes,
		PaymentDate:   at,
	}, nil
}
