package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilter bounds a report query to a date range
type ReportFilter struct {
	From time.Time
	To   time.Time
}

// BillingSummary aggregates invoicing and collection over a period.
// CollectionRate is collected/invoiced as a percentage, 0 when nothing
// was invoiced.
type BillingSummary struct {
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	InvoiceCount     int64           `json:"invoice_count"`
	PaymentCount     int64           `json:"payment_count"`
	CollectionRate   decimal.Decimal `json:"collection_rate"`
}

// PaymentMethodBreakdown aggregates payments by collection method
type PaymentMethodBreakdown struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// InvoiceAging buckets outstanding invoices by days past due
type InvoiceAging struct {
	Current      decimal.Decimal `json:"current"`
	Days1To30    decimal.Decimal `json:"days_1_to_30"`
	Over30Days   decimal.Decimal `json:"over_30_days"`
	CurrentCount int64           `json:"current_count"`
	Days1To30Cnt int64           `json:"days_1_to_30_count"`
	Over30Cnt    int64           `json:"over_30_count"`
}

// RevenueTrendPoint is one month of collected revenue
type RevenueTrendPoint struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Payments int64           `json:"payments"`
}

// PlanPerformance reports subscription and revenue per service plan
type PlanPerformance struct {
	PlanID          string          `json:"plan_id"`
	PlanName        string          `json:"plan_name"`
	ClientCount     int64           `json:"client_count"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	CollectedInPeriod decimal.Decimal `json:"collected_in_period"`
}

// DashboardStats is the landing-page snapshot
type DashboardStats struct {
	TotalClients      int64           `json:"total_clients"`
	ActiveClients     int64           `json:"active_clients"`
	SuspendedClients  int64           `json:"suspended_clients"`
	RevenueThisMonth  decimal.Decimal `json:"revenue_this_month"`
	RevenueLastMonth  decimal.Decimal `json:"revenue_last_month"`
	RevenueGrowth     decimal.Decimal `json:"revenue_growth"`
	OutstandingTotal  decimal.Decimal `json:"outstanding_total"`
	OverdueInvoices   int64           `json:"overdue_invoices"`
	PaymentsToday     int64           `json:"payments_today"`
	ARPU              decimal.Decimal `json:"arpu"`
}
