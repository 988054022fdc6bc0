package report

import (
	"context"
	"time"

	"github.com/netbill/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// ReportService shapes reporting read models for the API
type ReportService struct {
	reportRepo report.BillingReportRepository
	logger     *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo report.BillingReportRepository, logger *zap.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// BillingSummary returns invoicing and collection totals for a period.
// The collection rate is collected/invoiced as a percentage; a period
// with nothing invoiced reports 0, not a division error.
func (s *ReportService) BillingSummary(ctx context.Context, filter report.ReportFilter) (*report.BillingSummary, error) {
	summary, err := s.reportRepo.BillingSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	if summary.TotalInvoiced.IsPositive() {
		summary.CollectionRate = summary.TotalCollected.Div(summary.TotalInvoiced).Mul(hundred).Round(2)
	} else {
		summary.CollectionRate = decimal.Zero
	}
	return summary, nil
}

// PaymentMethodBreakdown returns per-method payment totals for a period
func (s *ReportService) PaymentMethodBreakdown(ctx context.Context, filter report.ReportFilter) ([]report.PaymentMethodBreakdown, error) {
	return s.reportRepo.PaymentMethodBreakdown(ctx, filter)
}

// InvoiceAging buckets outstanding invoices by days past due
func (s *ReportService) InvoiceAging(ctx context.Context, asOf time.Time) (*report.InvoiceAging, error) {
	return s.reportRepo.InvoiceAging(ctx, asOf)
}

// RevenueTrend returns monthly collected revenue for the trailing months
func (s *ReportService) RevenueTrend(ctx context.Context, months int) ([]report.RevenueTrendPoint, error) {
	if months <= 0 {
		months = 6
	}
	if months > 24 {
		months = 24
	}
	return s.reportRepo.RevenueTrend(ctx, months, time.Now())
}

// PlanPerformance returns per-plan subscription and revenue figures
func (s *ReportService) PlanPerformance(ctx context.Context, filter report.ReportFilter) ([]report.PlanPerformance, error) {
	return s.reportRepo.PlanPerformance(ctx, filter)
}

// Dashboard returns the landing-page snapshot with growth and ARPU
// derived from the raw aggregates. Growth is 0 when this month collected
// nothing, and 100 when last month collected nothing but this month did.
func (s *ReportService) Dashboard(ctx context.Context) (*report.DashboardStats, error) {
	stats, err := s.reportRepo.DashboardStats(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	stats.RevenueGrowth = growthPercent(stats.RevenueLastMonth, stats.RevenueThisMonth)

	if stats.ActiveClients > 0 {
		stats.ARPU = stats.RevenueThisMonth.Div(decimal.NewFromInt(stats.ActiveClients)).Round(2)
	} else {
		stats.ARPU = decimal.Zero
	}
	return stats, nil
}

func growthPercent(previous, current decimal.Decimal) decimal.Decimal {
	if current.IsZero() {
		return decimal.Zero
	}
	if previous.IsZero() {
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}
