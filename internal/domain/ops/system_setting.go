package ops

import (
	"strconv"

	"github.com/netbill/backend/internal/domain/shared"
)

// SystemSetting is a key/value configuration row editable at runtime
type SystemSetting struct {
	shared.BaseEntity
	Key         string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Value       string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SystemSetting) TableName() string {
	return "system_settings"
}

// NewSystemSetting creates a setting row
func NewSystemSetting(key, value, description string) (*SystemSetting, error) {
	if key == "" {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key is required")
	}
	return &SystemSetting{
		BaseEntity:  shared.NewBaseEntity(),
		Key:         key,
		Value:       value,
		Description: description,
	}, nil
}

// BoolValue interprets the value as a boolean, false when unparseable
func (s *SystemSetting) BoolValue() bool {
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		return false
	}
	return v
}

// IntValue interprets the value as an integer, falling back when unparseable
func (s *SystemSetting) IntValue(fallback int) int {
	v, err := strconv.Atoi(s.Value)
	if err != nil {
		return fallback
	}
	return v
}
