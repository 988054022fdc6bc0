package ops

import (
	"context"

	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ConfirmationToken is the phrase a caller must type to arm a reset
const ConfirmationToken = "RESET"

// ResetRequest describes a destructive data reset
type ResetRequest struct {
	Type         string         `json:"type" binding:"required,oneof=clients financial all custom"`
	Custom       ops.ResetScope `json:"custom"`
	Confirmation string         `json:"confirmation"`
	// Confirm bypasses the typed token; used by the CLI --confirm flag
	Confirm     bool   `json:"-"`
	PerformedBy string `json:"-"`
	Notes       string `json:"notes"`
}

// ResetResult reports what a reset removed
type ResetResult struct {
	Type            string `json:"type"`
	ClientsDeleted  int64  `json:"clients_deleted"`
	InvoicesDeleted int64  `json:"invoices_deleted"`
	PaymentsDeleted int64  `json:"payments_deleted"`
	UsageDeleted    int64  `json:"usage_deleted"`
}

// ResetService wipes operational data behind an explicit confirmation.
// The deletes and the audit log land in one transaction.
type ResetService struct {
	executor ops.ResetExecutor
	logRepo  ops.SystemResetLogRepository
	logger   *zap.Logger
}

// NewResetService creates a new ResetService
func NewResetService(executor ops.ResetExecutor, logRepo ops.SystemResetLogRepository, logger *zap.Logger) *ResetService {
	return &ResetService{
		executor: executor,
		logRepo:  logRepo,
		logger:   logger,
	}
}

// Execute performs a reset. Without the typed confirmation token or the
// Confirm flag it refuses with shared.ErrResetNotConfirmed.
func (s *ResetService) Execute(ctx context.Context, req ResetRequest) (*ResetResult, error) {
	if !req.Confirm && req.Confirmation != ConfirmationToken {
		return nil, shared.ErrResetNotConfirmed
	}

	resetType := ops.ResetType(req.Type)
	scope, err := scopeFor(resetType, req.Custom)
	if err != nil {
		return nil, err
	}

	log, err := ops.NewSystemResetLog(resetType, req.PerformedBy, req.Notes)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("system reset starting",
		zap.String("type", req.Type),
		zap.String("performed_by", req.PerformedBy))

	counts, err := s.executor.Execute(ctx, scope, log)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("system reset finished",
		zap.String("type", req.Type),
		zap.Int64("clients", counts.Clients),
		zap.Int64("invoices", counts.Invoices),
		zap.Int64("payments", counts.Payments),
		zap.Int64("usage", counts.Usage))

	return &ResetResult{
		Type:            req.Type,
		ClientsDeleted:  counts.Clients,
		InvoicesDeleted: counts.Invoices,
		PaymentsDeleted: counts.Payments,
		UsageDeleted:    counts.Usage,
	}, nil
}

// History lists recent reset audit records
func (s *ResetService) History(ctx context.Context, limit int) ([]*ops.SystemResetLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.logRepo.FindRecent(ctx, limit)
}

func scopeFor(resetType ops.ResetType, custom ops.ResetScope) (ops.ResetScope, error) {
	switch resetType {
	case ops.ResetTypeClients:
		// client rows cascade to their invoices, payments and usage
		return ops.ResetScope{Clients: true, Invoices: true, Payments: true, Usage: true}, nil
	case ops.ResetTypeFinancial:
		// financial history goes, clients stay with clean balances
		return ops.ResetScope{Invoices: true, Payments: true, ResetBalances: true}, nil
	case ops.ResetTypeAll:
		return ops.ResetScope{Clients: true, Invoices: true, Payments: true, Usage: true}, nil
	case ops.ResetTypeCustom:
		if !custom.Clients && !custom.Invoices && !custom.Payments && !custom.Usage {
			return ops.ResetScope{}, shared.NewDomainError("EMPTY_SCOPE", "Custom reset must select at least one data set")
		}
		return custom, nil
	default:
		return ops.ResetScope{}, shared.NewDomainError("INVALID_RESET_TYPE", "Unsupported reset type")
	}
}
