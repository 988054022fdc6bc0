package subscriber

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
)

// NetworkUsage records a client's traffic for one calendar day.
// One row per client per day.
type NetworkUsage struct {
	shared.BaseEntity
	ClientID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_client_date,priority:1"`
	UsageDate     time.Time `gorm:"type:date;not null;uniqueIndex:idx_usage_client_date,priority:2"`
	DownloadBytes int64     `gorm:"not null;default:0"`
	UploadBytes   int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (NetworkUsage) TableName() string {
	return "network_usage"
}

// NewNetworkUsage creates a usage record for a client and day
func NewNetworkUsage(clientID uuid.UUID, day time.Time, download, upload int64) (*NetworkUsage, error) {
	if download < 0 || upload < 0 {
		return nil, shared.NewDomainError("INVALID_USAGE", "Byte counters cannot be negative")
	}
	return &NetworkUsage{
		BaseEntity:    shared.NewBaseEntity(),
		ClientID:      clientID,
		UsageDate:     day,
		DownloadBytes: download,
		UploadBytes:   upload,
	}, nil
}

// TotalBytes returns combined traffic for the day
func (u *NetworkUsage) TotalBytes() int64 {
	return u.DownloadBytes + u.UploadBytes
}

// FormatUsage renders the day's traffic in the largest fitting unit
func (u *NetworkUsage) FormatUsage() string {
	total := float64(u.TotalBytes())
	switch {
	case total >= 1<<30:
		return fmt.Sprintf("%.2f GB", total/(1<<30))
	case total >= 1<<20:
		return fmt.Sprintf("%.2f MB", total/(1<<20))
	default:
		return fmt.Sprintf("%.2f KB", total/(1<<10))
	}
}
