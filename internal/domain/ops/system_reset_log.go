package ops

import (
	"time"

	"github.com/netbill/backend/internal/domain/shared"
)

// ResetType identifies which slice of data a system reset wipes
type ResetType string

const (
	ResetTypeClients   ResetType = "clients"
	ResetTypeFinancial ResetType = "financial"
	ResetTypeAll       ResetType = "all"
	ResetTypeCustom    ResetType = "custom"
)

// IsValid checks whether the reset type is supported
func (t ResetType) IsValid() bool {
	switch t {
	case ResetTypeClients, ResetTypeFinancial, ResetTypeAll, ResetTypeCustom:
		return true
	}
	return false
}

// SystemResetLog is an append-only audit record written in the same
// transaction as the reset itself, so the counts always match what was
// actually deleted.
type SystemResetLog struct {
	shared.BaseEntity
	ResetType       ResetType `gorm:"type:varchar(20);not null"`
	PerformedBy     string    `gorm:"type:varchar(100);not null"`
	ClientsDeleted  int64     `gorm:"not null;default:0"`
	InvoicesDeleted int64     `gorm:"not null;default:0"`
	PaymentsDeleted int64     `gorm:"not null;default:0"`
	UsageDeleted    int64     `gorm:"not null;default:0"`
	Notes           string    `gorm:"type:text"`
	PerformedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SystemResetLog) TableName() string {
	return "system_reset_logs"
}

// NewSystemResetLog creates a reset audit record
func NewSystemResetLog(resetType ResetType, performedBy, notes string) (*SystemResetLog, error) {
	if !resetType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RESET_TYPE", "Unsupported reset type")
	}
	if performedBy == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Reset must record who performed it")
	}

	return &SystemResetLog{
		BaseEntity:  shared.NewBaseEntity(),
		ResetType:   resetType,
		PerformedBy: performedBy,
		Notes:       notes,
		PerformedAt: time.Now(),
	}, nil
}
