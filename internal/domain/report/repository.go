package report

import (
	"context"
	"time"
)

// BillingReportRepository runs the aggregate queries behind reports.
// Implementations push the arithmetic into SQL; services only shape
// the results.
type BillingReportRepository interface {
	BillingSummary(ctx context.Context, filter ReportFilter) (*BillingSummary, error)
	PaymentMethodBreakdown(ctx context.Context, filter ReportFilter) ([]PaymentMethodBreakdown, error)
	InvoiceAging(ctx context.Context, asOf time.Time) (*InvoiceAging, error)
	RevenueTrend(ctx context.Context, months int, asOf time.Time) ([]RevenueTrendPoint, error)
	PlanPerformance(ctx context.Context, filter ReportFilter) ([]PlanPerformance, error)
	DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error)
}
