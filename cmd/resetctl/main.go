package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	opsapp "github.com/netbill/backend/internal/application/ops"
	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/infrastructure/config"
	"github.com/netbill/backend/internal/infrastructure/logger"
	"github.com/netbill/backend/internal/infrastructure/persistence"
	"github.com/netbill/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// resetctl wipes operational data from the command line. It exists for
// staging environments and fresh deployments; every run is written to
// the reset audit log like an API-triggered reset.
func main() {
	var (
		resetType   string
		confirm     bool
		backup      bool
		performedBy string
		notes       string
		clients     bool
		invoices    bool
		payments    bool
		usage       bool
		balances    bool
		olderDays   int
		timeout     time.Duration
	)
	flag.StringVar(&resetType, "type", "", "Reset type: clients, financial, all, custom")
	flag.BoolVar(&confirm, "confirm", false, "Confirm the reset without the interactive prompt")
	flag.BoolVar(&backup, "backup", false, "Take a backup before resetting")
	flag.StringVar(&performedBy, "by", "cli", "Operator recorded in the audit log")
	flag.StringVar(&notes, "notes", "", "Optional note recorded in the audit log")
	flag.BoolVar(&clients, "clients", false, "Custom scope: delete clients")
	flag.BoolVar(&invoices, "invoices", false, "Custom scope: delete invoices")
	flag.BoolVar(&payments, "payments", false, "Custom scope: delete payments")
	flag.BoolVar(&usage, "usage", false, "Custom scope: delete usage records")
	flag.BoolVar(&balances, "balances", false, "Custom scope: zero client balances")
	flag.IntVar(&olderDays, "older-than-days", 0, "Custom scope: only delete rows older than this many days")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall operation timeout")
	flag.Parse()

	log := logger.NewForEnvironment("development")
	defer func() {
		_ = log.Sync()
	}()

	if resetType == "" {
		log.Error("Missing -type flag (clients, financial, all, custom)")
		flag.Usage()
		os.Exit(2)
	}

	// Without -confirm, fall back to the typed token. The service
	// itself re-checks, so a wrong answer here only fails earlier.
	confirmation := ""
	if !confirm {
		fmt.Printf("This will permanently delete %s data. Type %s to continue: ", resetType, opsapp.ConfirmationToken)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			log.Fatal("Failed to read confirmation", zap.Error(err))
		}
		confirmation = strings.TrimSpace(line)
		if confirmation != opsapp.ConfirmationToken {
			log.Error("Confirmation mismatch, aborting")
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if backup {
		if err := takeBackup(ctx, cfg, db, log); err != nil {
			log.Fatal("Backup failed, reset aborted", zap.Error(err))
		}
	}

	resetService := opsapp.NewResetService(
		persistence.NewGormResetExecutor(db.DB),
		persistence.NewGormSystemResetLogRepository(db.DB),
		log,
	)

	var olderThan *time.Time
	if olderDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -olderDays)
		olderThan = &cutoff
	}

	result, err := resetService.Execute(ctx, opsapp.ResetRequest{
		Type: resetType,
		Custom: ops.ResetScope{
			Clients:       clients,
			Invoices:      invoices,
			Payments:      payments,
			Usage:         usage,
			ResetBalances: balances,
			OlderThan:     olderThan,
		},
		Confirmation: confirmation,
		Confirm:      confirm,
		PerformedBy:  performedBy,
		Notes:        notes,
	})
	if err != nil {
		log.Fatal("Reset failed", zap.Error(err))
	}

	log.Info("Reset complete",
		zap.String("type", result.Type),
		zap.Int64("clients_deleted", result.ClientsDeleted),
		zap.Int64("invoices_deleted", result.InvoicesDeleted),
		zap.Int64("payments_deleted", result.PaymentsDeleted),
		zap.Int64("usage_deleted", result.UsageDeleted),
	)
}

func takeBackup(ctx context.Context, cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	var store ops.BackupStorage
	var err error
	if cfg.Backup.Enabled {
		store, err = storage.NewS3BackupStorage(cfg.Backup, log)
	} else {
		store, err = storage.NewLocalBackupStorage("backups", log)
	}
	if err != nil {
		return err
	}

	backupService := opsapp.NewBackupService(
		persistence.NewGormClientRepository(db.DB),
		persistence.NewGormServicePlanRepository(db.DB),
		persistence.NewGormInvoiceRepository(db.DB),
		persistence.NewGormPaymentRepository(db.DB),
		store,
		log,
	)
	result, err := backupService.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("Backup stored", zap.String("location", result.Location))
	return nil
}
