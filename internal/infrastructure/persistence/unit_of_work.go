package persistence

import (
	"context"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/subscriber"
	"gorm.io/gorm"
)

// GormUnitOfWork runs billing operations inside one database transaction.
// Payment reconciliation writes the payment row, the invoice settlement
// and the client balance together, so a failure anywhere rolls back all
// three.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn within a transaction; repositories handed to fn are
// bound to that transaction
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos billing.TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r *txRepositories) Invoices() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *txRepositories) Payments() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *txRepositories) Clients() subscriber.ClientRepository {
	return NewGormClientRepository(r.tx)
}
