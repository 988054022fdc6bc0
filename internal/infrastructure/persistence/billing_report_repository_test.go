package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPayment(t *testing.T, db *gorm.DB, clientID uuid.UUID, amount int64, method billing.PaymentMethod, at time.Time) {
	t.Helper()
	payment, err := billing.NewPayment(clientID, nil, decimal.NewFromInt(amount), method, "", "", at)
	require.NoError(t, err)
	require.NoError(t, NewGormPaymentRepository(db).Save(context.Background(), payment))
}

func TestGormBillingReportRepository_BillingSummary(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormBillingReportRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	invoiceRepo := NewGormInvoiceRepository(db)
	open := newTestInvoice(t, clientID, billing.FormatInvoiceNumber(day, 1), day.AddDate(0, 0, 14))
	cancelled := newTestInvoice(t, clientID, billing.FormatInvoiceNumber(day, 2), day.AddDate(0, 0, 14))
	require.NoError(t, cancelled.Cancel())
	// The summary window filters invoices on created_at; pin it so the
	// rows land inside the fixed filter regardless of when the test runs.
	open.CreatedAt = day
	cancelled.CreatedAt = day
	require.NoError(t, invoiceRepo.Save(ctx, open))
	require.NoError(t, invoiceRepo.Save(ctx, cancelled))

	seedPayment(t, db, clientID, 1500, billing.PaymentMethodMpesa, day.AddDate(0, 0, 2))
	seedPayment(t, db, clientID, 1000, billing.PaymentMethodCash, day.AddDate(0, 0, 3))

	filter := report.ReportFilter{From: day.AddDate(0, 0, -30), To: day.AddDate(0, 0, 30)}
	summary, err := repo.BillingSummary(ctx, filter)
	require.NoError(t, err)

	// Cancelled invoices are excluded from totals
	assert.True(t, summary.TotalInvoiced.Equal(decimal.NewFromInt(2500)), "invoiced %s", summary.TotalInvoiced)
	assert.Equal(t, int64(1), summary.InvoiceCount)
	assert.True(t, summary.TotalCollected.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, int64(2), summary.PaymentCount)
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(2500)))
}

func TestGormBillingReportRepository_PaymentMethodBreakdown(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormBillingReportRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	at := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	seedPayment(t, db, clientID, 2000, billing.PaymentMethodMpesa, at)
	seedPayment(t, db, clientID, 500, billing.PaymentMethodMpesa, at)
	seedPayment(t, db, clientID, 300, billing.PaymentMethodCash, at)

	filter := report.ReportFilter{From: at.AddDate(0, 0, -1), To: at.AddDate(0, 0, 1)}
	rows, err := repo.PaymentMethodBreakdown(ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ordered by total, largest first
	assert.Equal(t, "mpesa", rows[0].Method)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.True(t, rows[0].Total.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "cash", rows[1].Method)
}

func TestGormBillingReportRepository_InvoiceAging(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormBillingReportRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	day := asOf.AddDate(0, 0, -60)

	invoiceRepo := NewGormInvoiceRepository(db)
	require.NoError(t, invoiceRepo.Save(ctx, newTestInvoice(t, clientID, billing.FormatInvoiceNumber(day, 1), asOf.AddDate(0, 0, 5))))
	require.NoError(t, invoiceRepo.Save(ctx, newTestInvoice(t, clientID, billing.FormatInvoiceNumber(day, 2), asOf.AddDate(0, 0, -10))))
	require.NoError(t, invoiceRepo.Save(ctx, newTestInvoice(t, clientID, billing.FormatInvoiceNumber(day, 3), asOf.AddDate(0, 0, -45))))

	aging, err := repo.InvoiceAging(ctx, asOf)
	require.NoError(t, err)

	assert.Equal(t, int64(1), aging.CurrentCount)
	assert.Equal(t, int64(1), aging.Days1To30Cnt)
	assert.Equal(t, int64(1), aging.Over30Cnt)
	assert.True(t, aging.Current.Equal(decimal.NewFromInt(2500)))
	assert.True(t, aging.Over30Days.Equal(decimal.NewFromInt(2500)))
}

func TestGormBillingReportRepository_RevenueTrend(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormBillingReportRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	asOf := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	seedPayment(t, db, clientID, 3000, billing.PaymentMethodMpesa, time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC))
	seedPayment(t, db, clientID, 2000, billing.PaymentMethodCash, time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC))

	points, err := repo.RevenueTrend(ctx, 3, asOf)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2026-06", points[0].Month)
	assert.True(t, points[0].Revenue.IsZero())
	assert.Equal(t, "2026-07", points[1].Month)
	assert.True(t, points[1].Revenue.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, "2026-08", points[2].Month)
	assert.True(t, points[2].Revenue.Equal(decimal.NewFromInt(3000)))
}

func TestGormBillingReportRepository_DashboardStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormBillingReportRepository(db)
	ctx := context.Background()

	clientRepo := NewGormClientRepository(db)
	owing := newTestClient(t, "Owing", "owing")
	owing.ChargeMonthlyFee()
	require.NoError(t, clientRepo.Save(ctx, owing))

	suspended := newTestClient(t, "Suspended", "susp")
	require.NoError(t, suspended.Suspend())
	require.NoError(t, clientRepo.Save(ctx, suspended))

	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	seedPayment(t, db, owing.ID, 1200, billing.PaymentMethodMpesa, now.Add(-2*time.Hour))
	seedPayment(t, db, owing.ID, 800, billing.PaymentMethodCash, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC))

	stats, err := repo.DashboardStats(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalClients)
	assert.Equal(t, int64(1), stats.ActiveClients)
	assert.Equal(t, int64(1), stats.SuspendedClients)
	assert.True(t, stats.RevenueThisMonth.Equal(decimal.NewFromInt(1200)))
	assert.True(t, stats.RevenueLastMonth.Equal(decimal.NewFromInt(800)))
	assert.True(t, stats.OutstandingTotal.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, int64(1), stats.PaymentsToday)
}
