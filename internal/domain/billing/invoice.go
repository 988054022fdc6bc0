package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceNumberSeqDigits is the zero-padded width of the daily sequence
const InvoiceNumberSeqDigits = 4

// Invoice represents a billing document issued to a client. The invoice
// number is assigned once at first save and never changes. An invoice
// transitions to paid only through a recorded payment.
type Invoice struct {
	shared.BaseAggregateRoot
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DueDate       time.Time       `gorm:"type:date;not null"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft'"`
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a draft invoice without a number; the number is assigned
// inside the issuing transaction so the daily sequence stays dense.
func NewInvoice(clientID uuid.UUID, amount decimal.Decimal, dueDate time.Time) (*Invoice, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Invoice must belong to a client")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		Amount:            amount,
		DueDate:           dueDate,
		Status:            InvoiceStatusDraft,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AssignNumber sets the invoice number exactly once
func (i *Invoice) AssignNumber(number string) error {
	if i.InvoiceNumber != "" {
		return shared.NewDomainError("NUMBER_ASSIGNED", "Invoice number is already assigned and cannot change")
	}
	if _, _, err := ParseInvoiceNumber(number); err != nil {
		return err
	}
	i.InvoiceNumber = number
	return nil
}

// MarkSent moves a draft invoice to sent
func (i *Invoice) MarkSent() error {
	if i.Status != InvoiceStatusDraft {
		return shared.ErrInvalidState
	}
	i.Status = InvoiceStatusSent
	return nil
}

// MarkPaid settles the invoice. Only the payment recording path calls this;
// the paid amount is not validated against the invoice amount.
func (i *Invoice) MarkPaid(at time.Time) error {
	if i.Status == InvoiceStatusCancelled {
		return shared.ErrInvalidState
	}
	i.Status = InvoiceStatusPaid
	i.PaidAt = &at
	i.AddDomainEvent(NewInvoicePaidEvent(i))
	return nil
}

// MarkOverdue flags an unpaid invoice past its due date
func (i *Invoice) MarkOverdue() error {
	if i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled {
		return shared.ErrInvalidState
	}
	i.Status = InvoiceStatusOverdue
	return nil
}

// Cancel voids an unpaid invoice
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVOICE_PAID", "A paid invoice cannot be cancelled")
	}
	i.Status = InvoiceStatusCancelled
	return nil
}

// IsOutstanding reports whether the invoice still awaits payment
func (i *Invoice) IsOutstanding() bool {
	switch i.Status {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue:
		return true
	default:
		return false
	}
}

// DayPrefix returns the YYYYMMDD invoice-number prefix for a day
func DayPrefix(day time.Time) string {
	return day.Format("20060102")
}

// FormatInvoiceNumber renders a number as YYYYMMDD-NNNN
func FormatInvoiceNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%0*d", DayPrefix(day), InvoiceNumberSeqDigits, seq)
}

// ParseInvoiceNumber splits a number into its day prefix and sequence
func ParseInvoiceNumber(number string) (prefix string, seq int, err error) {
	parts := strings.SplitN(number, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 8 || len(parts[1]) != InvoiceNumberSeqDigits {
		return "", 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number must be formatted as YYYYMMDD-NNNN")
	}
	if _, err := time.Parse("20060102", parts[0]); err != nil {
		return "", 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number must start with a valid date")
	}
	seq, convErr := strconv.Atoi(parts[1])
	if convErr != nil || seq < 1 {
		return "", 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number sequence must be a positive integer")
	}
	return parts[0], seq, nil
}
