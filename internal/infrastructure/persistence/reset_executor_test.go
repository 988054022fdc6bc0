package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedResetData(t *testing.T, db *gorm.DB) *subscriber.Client {
	t.Helper()
	ctx := context.Background()

	client := newTestClient(t, "Reset Victim", "victim")
	client.ChargeMonthlyFee()
	require.NoError(t, NewGormClientRepository(db).Save(ctx, client))

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	invoiceRepo := NewGormInvoiceRepository(db)
	require.NoError(t, invoiceRepo.Save(ctx, newTestInvoice(t, client.ID, billing.FormatInvoiceNumber(day, 1), day)))
	require.NoError(t, invoiceRepo.Save(ctx, newTestInvoice(t, client.ID, billing.FormatInvoiceNumber(day, 2), day)))

	payment, err := billing.NewPayment(client.ID, nil, decimal.NewFromInt(500), billing.PaymentMethodCash, "", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, NewGormPaymentRepository(db).Save(ctx, payment))

	usage, err := subscriber.NewNetworkUsage(client.ID, day, 1024, 512)
	require.NoError(t, err)
	require.NoError(t, NewGormNetworkUsageRepository(db).Upsert(ctx, usage))

	return client
}

func TestGormResetExecutor_FinancialScope(t *testing.T) {
	db := newTestDB(t)
	client := seedResetData(t, db)
	ctx := context.Background()

	log, err := ops.NewSystemResetLog(ops.ResetTypeFinancial, "admin", "")
	require.NoError(t, err)

	scope := ops.ResetScope{Invoices: true, Payments: true, ResetBalances: true}
	counts, err := NewGormResetExecutor(db).Execute(ctx, scope, log)
	require.NoError(t, err)

	assert.Equal(t, int64(2), counts.Invoices)
	assert.Equal(t, int64(1), counts.Payments)
	assert.Equal(t, int64(0), counts.Clients)
	assert.Equal(t, int64(0), counts.Usage)

	// Clients survive a financial reset with balances zeroed
	kept, err := NewGormClientRepository(db).FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, kept.Balance.IsZero())

	var usageCount int64
	require.NoError(t, db.Model(&subscriber.NetworkUsage{}).Count(&usageCount).Error)
	assert.Equal(t, int64(1), usageCount)

	// Audit entry carries the counts
	logs, err := NewGormSystemResetLogRepository(db).FindRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(2), logs[0].InvoicesDeleted)
	assert.Equal(t, int64(1), logs[0].PaymentsDeleted)
}

func TestGormResetExecutor_ClientScopeCascades(t *testing.T) {
	db := newTestDB(t)
	seedResetData(t, db)
	ctx := context.Background()

	log, err := ops.NewSystemResetLog(ops.ResetTypeClients, "admin", "fresh start")
	require.NoError(t, err)

	counts, err := NewGormResetExecutor(db).Execute(ctx, ops.ResetScope{Clients: true}, log)
	require.NoError(t, err)

	assert.Equal(t, int64(1), counts.Clients)
	assert.Equal(t, int64(2), counts.Invoices)
	assert.Equal(t, int64(1), counts.Payments)
	assert.Equal(t, int64(1), counts.Usage)

	var remaining int64
	require.NoError(t, db.Model(&subscriber.Client{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestGormResetExecutor_CustomScopeAgeCutoff(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	client := newTestClient(t, "Archive Cleanup", "archived")
	require.NoError(t, NewGormClientRepository(db).Save(ctx, client))

	now := time.Now()
	staleDay := now.AddDate(0, 0, -400)

	invoiceRepo := NewGormInvoiceRepository(db)
	stale := newTestInvoice(t, client.ID, billing.FormatInvoiceNumber(staleDay, 1), staleDay)
	stale.CreatedAt = staleDay
	require.NoError(t, invoiceRepo.Save(ctx, stale))
	fresh := newTestInvoice(t, client.ID, billing.FormatInvoiceNumber(now, 1), now.AddDate(0, 0, 14))
	require.NoError(t, invoiceRepo.Save(ctx, fresh))

	paymentRepo := NewGormPaymentRepository(db)
	stalePayment, err := billing.NewPayment(client.ID, nil, decimal.NewFromInt(500), billing.PaymentMethodCash, "", "", staleDay)
	require.NoError(t, err)
	require.NoError(t, paymentRepo.Save(ctx, stalePayment))
	freshPayment, err := billing.NewPayment(client.ID, nil, decimal.NewFromInt(750), billing.PaymentMethodCash, "", "", now)
	require.NoError(t, err)
	require.NoError(t, paymentRepo.Save(ctx, freshPayment))

	log, err := ops.NewSystemResetLog(ops.ResetTypeCustom, "admin", "annual archive purge")
	require.NoError(t, err)

	cutoff := now.AddDate(0, 0, -365)
	scope := ops.ResetScope{Invoices: true, Payments: true, OlderThan: &cutoff}
	counts, err := NewGormResetExecutor(db).Execute(ctx, scope, log)
	require.NoError(t, err)

	assert.Equal(t, int64(1), counts.Invoices)
	assert.Equal(t, int64(1), counts.Payments)

	// Rows inside the retention window survive
	keptInvoice, err := invoiceRepo.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.InvoiceNumber, keptInvoice.InvoiceNumber)

	_, err = invoiceRepo.FindByID(ctx, stale.ID)
	assert.Error(t, err)

	var paymentCount int64
	require.NoError(t, db.Model(&billing.Payment{}).Count(&paymentCount).Error)
	assert.Equal(t, int64(1), paymentCount)
}
