package ops

import (
	"context"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/catalog"
	"github.com/netbill/backend/internal/domain/subscriber"
)

// SystemStats is a row-count snapshot of the main tables
type SystemStats struct {
	Clients        int64 `json:"clients"`
	ActiveClients  int64 `json:"active_clients"`
	ServicePlans   int64 `json:"service_plans"`
	Invoices       int64 `json:"invoices"`
	Payments       int64 `json:"payments"`
	UsageDownload  int64 `json:"usage_download_bytes"`
	UsageUpload    int64 `json:"usage_upload_bytes"`
	UsageSinceDays int   `json:"usage_since_days"`
}

// StatsService reports database shape for the admin screens
type StatsService struct {
	clientRepo  subscriber.ClientRepository
	planRepo    catalog.ServicePlanRepository
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	usageRepo   subscriber.NetworkUsageRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(clientRepo subscriber.ClientRepository, planRepo catalog.ServicePlanRepository, invoiceRepo billing.InvoiceRepository, paymentRepo billing.PaymentRepository, usageRepo subscriber.NetworkUsageRepository) *StatsService {
	return &StatsService{
		clientRepo:  clientRepo,
		planRepo:    planRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		usageRepo:   usageRepo,
	}
}

// Snapshot gathers the current counts. Usage totals cover the trailing
// 30 days.
func (s *StatsService) Snapshot(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{UsageSinceDays: 30}

	var err error
	if stats.Clients, err = s.clientRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveClients, err = s.clientRepo.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.ServicePlans, err = s.planRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Invoices, err = s.invoiceRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Payments, err = s.paymentRepo.Count(ctx); err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -stats.UsageSinceDays)
	if stats.UsageDownload, stats.UsageUpload, err = s.usageRepo.TotalsSince(ctx, since); err != nil {
		return nil, err
	}
	return stats, nil
}
