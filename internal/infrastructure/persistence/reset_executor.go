package persistence

import (
	"context"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormResetExecutor wipes the scoped tables and writes the audit log in a
// single transaction, so the recorded counts always match the rows removed.
type GormResetExecutor struct {
	db *gorm.DB
}

// NewGormResetExecutor creates a new GormResetExecutor
func NewGormResetExecutor(db *gorm.DB) *GormResetExecutor {
	return &GormResetExecutor{db: db}
}

// Execute deletes data per the scope, stamps the counts onto the log and
// persists it. Children go before clients so foreign keys never block the
// wipe. A scope cutoff narrows each delete to rows whose date column
// precedes it.
func (e *GormResetExecutor) Execute(ctx context.Context, scope ops.ResetScope, log *ops.SystemResetLog) (ops.ResetCounts, error) {
	var counts ops.ResetCounts

	scoped := func(tx *gorm.DB, dateColumn string) *gorm.DB {
		if scope.OlderThan != nil {
			return tx.Where(dateColumn+" < ?", *scope.OlderThan)
		}
		return tx.Where("1 = 1")
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if scope.Payments || scope.Clients {
			result := scoped(tx, "payment_date").Delete(&billing.Payment{})
			if result.Error != nil {
				return result.Error
			}
			counts.Payments = result.RowsAffected
		}

		if scope.Invoices || scope.Clients {
			result := scoped(tx, "created_at").Delete(&billing.Invoice{})
			if result.Error != nil {
				return result.Error
			}
			counts.Invoices = result.RowsAffected
		}

		if scope.Usage || scope.Clients {
			result := scoped(tx, "usage_date").Delete(&subscriber.NetworkUsage{})
			if result.Error != nil {
				return result.Error
			}
			counts.Usage = result.RowsAffected
		}

		if scope.Clients {
			result := scoped(tx, "created_at").Delete(&subscriber.Client{})
			if result.Error != nil {
				return result.Error
			}
			counts.Clients = result.RowsAffected
		} else if scope.ResetBalances {
			if err := tx.Model(&subscriber.Client{}).
				Where("balance <> ?", decimal.Zero).
				Updates(map[string]interface{}{
					"balance":    decimal.Zero,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		log.ClientsDeleted = counts.Clients
		log.InvoicesDeleted = counts.Invoices
		log.PaymentsDeleted = counts.Payments
		log.UsageDeleted = counts.Usage

		return tx.Create(log).Error
	})
	if err != nil {
		return ops.ResetCounts{}, err
	}
	return counts, nil
}
