package ops

import (
	"context"
	"time"
)

// SystemResetLogRepository defines the interface for reset audit persistence.
// Logs are append-only; there is no update or delete.
type SystemResetLogRepository interface {
	Save(ctx context.Context, log *SystemResetLog) error
	FindRecent(ctx context.Context, limit int) ([]*SystemResetLog, error)
}

// SystemSettingRepository defines the interface for runtime settings
type SystemSettingRepository interface {
	FindByKey(ctx context.Context, key string) (*SystemSetting, error)
	FindAll(ctx context.Context) ([]*SystemSetting, error)
	Save(ctx context.Context, setting *SystemSetting) error
}

// ResetScope selects which tables a reset wipes. ResetBalances zeroes
// client balances without deleting the clients themselves. A non-nil
// OlderThan restricts the deletes to rows dated before the cutoff.
type ResetScope struct {
	Clients       bool       `json:"clients"`
	Invoices      bool       `json:"invoices"`
	Payments      bool       `json:"payments"`
	Usage         bool       `json:"usage"`
	ResetBalances bool       `json:"reset_balances"`
	OlderThan     *time.Time `json:"older_than"`
}

// ResetCounts reports how many rows each table lost
type ResetCounts struct {
	Clients  int64
	Invoices int64
	Payments int64
	Usage    int64
}

// ResetExecutor deletes the scoped data and writes the audit log inside
// one transaction, so the recorded counts always match the rows removed.
type ResetExecutor interface {
	Execute(ctx context.Context, scope ResetScope, log *SystemResetLog) (ResetCounts, error)
}

// BackupStorage uploads a snapshot archive and returns its location
type BackupStorage interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}
