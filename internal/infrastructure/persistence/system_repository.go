package persistence

import (
	"context"
	"errors"

	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSystemResetLogRepository implements SystemResetLogRepository using GORM.
// The log is append-only.
type GormSystemResetLogRepository struct {
	db *gorm.DB
}

// NewGormSystemResetLogRepository creates a new GormSystemResetLogRepository
func NewGormSystemResetLogRepository(db *gorm.DB) *GormSystemResetLogRepository {
	return &GormSystemResetLogRepository{db: db}
}

// Save appends a reset log entry
func (r *GormSystemResetLogRepository) Save(ctx context.Context, log *ops.SystemResetLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindRecent returns the most recent reset log entries
func (r *GormSystemResetLogRepository) FindRecent(ctx context.Context, limit int) ([]*ops.SystemResetLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []*ops.SystemResetLog
	if err := r.db.WithContext(ctx).
		Order("performed_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// GormSystemSettingRepository implements SystemSettingRepository using GORM
type GormSystemSettingRepository struct {
	db *gorm.DB
}

// NewGormSystemSettingRepository creates a new GormSystemSettingRepository
func NewGormSystemSettingRepository(db *gorm.DB) *GormSystemSettingRepository {
	return &GormSystemSettingRepository{db: db}
}

// FindByKey finds a setting by its key
func (r *GormSystemSettingRepository) FindByKey(ctx context.Context, key string) (*ops.SystemSetting, error) {
	var setting ops.SystemSetting
	if err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// FindAll returns all settings ordered by key
func (r *GormSystemSettingRepository) FindAll(ctx context.Context) ([]*ops.SystemSetting, error) {
	var settings []*ops.SystemSetting
	if err := r.db.WithContext(ctx).
		Order("key ASC").
		Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Save creates or updates a setting
func (r *GormSystemSettingRepository) Save(ctx context.Context, setting *ops.SystemSetting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}
