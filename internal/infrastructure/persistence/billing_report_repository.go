package persistence

import (
	"context"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/report"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBillingReportRepository implements BillingReportRepository using GORM.
// All arithmetic happens in SQL; the report service only shapes results.
type GormBillingReportRepository struct {
	db *gorm.DB
}

// NewGormBillingReportRepository creates a new GormBillingReportRepository
func NewGormBillingReportRepository(db *gorm.DB) *GormBillingReportRepository {
	return &GormBillingReportRepository{db: db}
}

var outstandingStatuses = []billing.InvoiceStatus{
	billing.InvoiceStatusDraft,
	billing.InvoiceStatusSent,
	billing.InvoiceStatusOverdue,
}

// BillingSummary aggregates invoicing and collection over the period.
// Cancelled invoices are excluded from every figure.
func (r *GormBillingReportRepository) BillingSummary(ctx context.Context, filter report.ReportFilter) (*report.BillingSummary, error) {
	summary := &report.BillingSummary{}

	type invoiceAgg struct {
		Total decimal.Decimal
		Count int64
	}
	var invoiced invoiceAgg
	if err := r.db.WithContext(ctx).Table("invoices").
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", filter.From, filter.To).
		Where("status <> ?", billing.InvoiceStatusCancelled).
		Scan(&invoiced).Error; err != nil {
		return nil, err
	}
	summary.TotalInvoiced = invoiced.Total
	summary.InvoiceCount = invoiced.Count

	var collected invoiceAgg
	if err := r.db.WithContext(ctx).Table("payments").
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("payment_date >= ? AND payment_date < ?", filter.From, filter.To).
		Scan(&collected).Error; err != nil {
		return nil, err
	}
	summary.TotalCollected = collected.Total
	summary.PaymentCount = collected.Count

	var outstanding decimal.Decimal
	if err := r.db.WithContext(ctx).Table("invoices").
		Select("COALESCE(SUM(amount), 0)").
		Where("created_at >= ? AND created_at < ?", filter.From, filter.To).
		Where("status IN ?", outstandingStatuses).
		Scan(&outstanding).Error; err != nil {
		return nil, err
	}
	summary.TotalOutstanding = outstanding

	return summary, nil
}

// PaymentMethodBreakdown aggregates payments by method over the period
func (r *GormBillingReportRepository) PaymentMethodBreakdown(ctx context.Context, filter report.ReportFilter) ([]report.PaymentMethodBreakdown, error) {
	var rows []report.PaymentMethodBreakdown
	if err := r.db.WithContext(ctx).Table("payments").
		Select("method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("payment_date >= ? AND payment_date < ?", filter.From, filter.To).
		Group("method").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// InvoiceAging buckets outstanding invoices by days past due as of a date
func (r *GormBillingReportRepository) InvoiceAging(ctx context.Context, asOf time.Time) (*report.InvoiceAging, error) {
	aging := &report.InvoiceAging{}

	type bucket struct {
		Total decimal.Decimal
		Count int64
	}
	sumBucket := func(dest *bucket, cond string, args ...interface{}) error {
		return r.db.WithContext(ctx).Table("invoices").
			Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
			Where("status IN ?", outstandingStatuses).
			Where(cond, args...).
			Scan(dest).Error
	}

	thirtyDaysAgo := asOf.AddDate(0, 0, -30)

	var current, recent, old bucket
	if err := sumBucket(&current, "due_date >= ?", asOf); err != nil {
		return nil, err
	}
	if err := sumBucket(&recent, "due_date < ? AND due_date >= ?", asOf, thirtyDaysAgo); err != nil {
		return nil, err
	}
	if err := sumBucket(&old, "due_date < ?", thirtyDaysAgo); err != nil {
		return nil, err
	}

	aging.Current = current.Total
	aging.CurrentCount = current.Count
	aging.Days1To30 = recent.Total
	aging.Days1To30Cnt = recent.Count
	aging.Over30Days = old.Total
	aging.Over30Cnt = old.Count

	return aging, nil
}

// RevenueTrend returns collected revenue per month for the trailing months,
// oldest first. One query per month keeps the SQL portable.
func (r *GormBillingReportRepository) RevenueTrend(ctx context.Context, months int, asOf time.Time) ([]report.RevenueTrendPoint, error) {
	points := make([]report.RevenueTrendPoint, 0, months)

	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())

	for i := months - 1; i >= 0; i-- {
		from := monthStart.AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)

		var agg struct {
			Total decimal.Decimal
			Count int64
		}
		if err := r.db.WithContext(ctx).Table("payments").
			Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
			Where("payment_date >= ? AND payment_date < ?", from, to).
			Scan(&agg).Error; err != nil {
			return nil, err
		}

		points = append(points, report.RevenueTrendPoint{
			Month:    from.Format("2006-01"),
			Revenue:  agg.Total,
			Payments: agg.Count,
		})
	}
	return points, nil
}

// PlanPerformance reports subscriptions and revenue per service plan
func (r *GormBillingReportRepository) PlanPerformance(ctx context.Context, filter report.ReportFilter) ([]report.PlanPerformance, error) {
	var rows []report.PlanPerformance
	if err := r.db.WithContext(ctx).Table("service_plans sp").
		Select(`sp.id AS plan_id, sp.name AS plan_name,
			COUNT(c.id) AS client_count,
			COALESCE(SUM(CASE WHEN c.status = ? THEN c.monthly_fee ELSE 0 END), 0) AS monthly_revenue`,
			subscriber.ClientStatusActive).
		Joins("LEFT JOIN clients c ON c.service_plan_id = sp.id").
		Group("sp.id, sp.name").
		Order("monthly_revenue DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for i := range rows {
		var collected decimal.Decimal
		if err := r.db.WithContext(ctx).Table("payments p").
			Select("COALESCE(SUM(p.amount), 0)").
			Joins("JOIN clients c ON c.id = p.client_id").
			Where("c.service_plan_id = ?", rows[i].PlanID).
			Where("p.payment_date >= ? AND p.payment_date < ?", filter.From, filter.To).
			Scan(&collected).Error; err != nil {
			return nil, err
		}
		rows[i].CollectedInPeriod = collected
	}
	return rows, nil
}

// DashboardStats gathers the landing-page snapshot. Growth and ARPU are
// derived by the report service from the raw figures here.
func (r *GormBillingReportRepository) DashboardStats(ctx context.Context, now time.Time) (*report.DashboardStats, error) {
	stats := &report.DashboardStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&subscriber.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&subscriber.Client{}).
		Where("status = ?", subscriber.ClientStatusActive).
		Count(&stats.ActiveClients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&subscriber.Client{}).
		Where("status = ?", subscriber.ClientStatusSuspended).
		Count(&stats.SuspendedClients).Error; err != nil {
		return nil, err
	}

	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	sumPayments := func(dest *decimal.Decimal, from, to time.Time) error {
		return db.Table("payments").
			Select("COALESCE(SUM(amount), 0)").
			Where("payment_date >= ? AND payment_date < ?", from, to).
			Scan(dest).Error
	}

	if err := sumPayments(&stats.RevenueThisMonth, thisMonth, thisMonth.AddDate(0, 1, 0)); err != nil {
		return nil, err
	}
	if err := sumPayments(&stats.RevenueLastMonth, lastMonth, thisMonth); err != nil {
		return nil, err
	}

	if err := db.Table("clients").
		Select("COALESCE(SUM(balance), 0)").
		Where("balance > 0").
		Scan(&stats.OutstandingTotal).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&billing.Invoice{}).
		Where("status IN ? AND due_date < ?", outstandingStatuses, now).
		Count(&stats.OverdueInvoices).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&billing.Payment{}).
		Where("payment_date >= ? AND payment_date < ?", today, today.AddDate(0, 0, 1)).
		Count(&stats.PaymentsToday).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
