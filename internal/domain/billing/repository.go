package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Invoice, int64, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*Invoice, error)
	FindOutstandingByClient(ctx context.Context, clientID uuid.UUID) ([]*Invoice, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]*Invoice, error)

	// LastSequenceForDay returns the highest issued sequence for a day
	// prefix, 0 when none. Implementations must read within the caller's
	// transaction so concurrent issuers hit the unique index instead of
	// silently reusing a number.
	LastSequenceForDay(ctx context.Context, prefix string) (int, error)

	// Save persists the invoice and returns shared.ErrDuplicateInvoiceNo
	// when the invoice number collides with an existing one.
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Payment, int64, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*Payment, error)
	FindBetween(ctx context.Context, from, to time.Time) ([]*Payment, error)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	Save(ctx context.Context, payment *Payment) error
	Count(ctx context.Context) (int64, error)
}

// UnitOfWork runs a function inside a database transaction. Repositories
// obtained through the callback share that transaction.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(repos TxRepositories) error) error
}

// TxRepositories bundles the repositories bound to one transaction.
// Payment recording touches the invoice, the payment record and the
// client balance, so the client repository rides along.
type TxRepositories interface {
	Invoices() InvoiceRepository
	Payments() PaymentRepository
	Clients() subscriber.ClientRepository
}
