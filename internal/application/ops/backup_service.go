package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/catalog"
	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"go.uber.org/zap"
)

// BackupResult reports an uploaded snapshot
type BackupResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Clients  int    `json:"clients"`
	Plans    int    `json:"plans"`
	Invoices int    `json:"invoices"`
	Payments int    `json:"payments"`
	Bytes    int    `json:"bytes"`
}

type backupSnapshot struct {
	TakenAt  time.Time             `json:"taken_at"`
	Plans    []catalog.ServicePlan `json:"plans"`
	Clients  []subscriber.Client   `json:"clients"`
	Invoices []*billing.Invoice    `json:"invoices"`
	Payments []*billing.Payment    `json:"payments"`
}

// BackupService serializes the operational dataset and ships it to
// object storage
type BackupService struct {
	clientRepo  subscriber.ClientRepository
	planRepo    catalog.ServicePlanRepository
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	storage     ops.BackupStorage
	logger      *zap.Logger
}

// NewBackupService creates a new BackupService
func NewBackupService(clientRepo subscriber.ClientRepository, planRepo catalog.ServicePlanRepository, invoiceRepo billing.InvoiceRepository, paymentRepo billing.PaymentRepository, storage ops.BackupStorage, logger *zap.Logger) *BackupService {
	return &BackupService{
		clientRepo:  clientRepo,
		planRepo:    planRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		storage:     storage,
		logger:      logger,
	}
}

// Run takes a full JSON snapshot and uploads it. The key embeds the
// timestamp so snapshots never overwrite each other.
func (s *BackupService) Run(ctx context.Context) (*BackupResult, error) {
	everything := shared.Filter{Page: 1, PageSize: 1000000}

	plans, err := s.planRepo.FindAll(ctx, everything)
	if err != nil {
		return nil, err
	}
	clients, _, err := s.clientRepo.FindAll(ctx, everything)
	if err != nil {
		return nil, err
	}
	invoices, _, err := s.invoiceRepo.FindAll(ctx, everything)
	if err != nil {
		return nil, err
	}
	payments, _, err := s.paymentRepo.FindAll(ctx, everything)
	if err != nil {
		return nil, err
	}

	snapshot := backupSnapshot{
		TakenAt:  time.Now().UTC(),
		Plans:    plans,
		Clients:  clients,
		Invoices: invoices,
		Payments: payments,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("backups/netbill-%s.json", snapshot.TakenAt.Format("20060102-150405"))
	location, err := s.storage.Upload(ctx, key, data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("backup uploaded",
		zap.String("key", key),
		zap.Int("bytes", len(data)))

	return &BackupResult{
		Key:      key,
		Location: location,
		Clients:  len(clients),
		Plans:    len(plans),
		Invoices: len(invoices),
		Payments: len(payments),
		Bytes:    len(data),
	}, nil
}
