package ops

import (
	"context"
	"errors"

	"github.com/netbill/backend/internal/domain/ops"
	"github.com/netbill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UpsertSettingRequest creates a setting or overwrites its value
type UpsertSettingRequest struct {
	Value       string `json:"value" binding:"required"`
	Description string `json:"description"`
}

// SettingsService manages the runtime key/value settings
type SettingsService struct {
	repo   ops.SystemSettingRepository
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo ops.SystemSettingRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

// List returns all settings ordered by key
func (s *SettingsService) List(ctx context.Context) ([]*ops.SystemSetting, error) {
	return s.repo.FindAll(ctx)
}

// Get returns a single setting by key
func (s *SettingsService) Get(ctx context.Context, key string) (*ops.SystemSetting, error) {
	return s.repo.FindByKey(ctx, key)
}

// Upsert creates the setting when missing, otherwise replaces its value.
// The description is only overwritten when the request supplies one.
func (s *SettingsService) Upsert(ctx context.Context, key string, req UpsertSettingRequest) (*ops.SystemSetting, error) {
	setting, err := s.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		setting.Value = req.Value
		if req.Description != "" {
			setting.Description = req.Description
		}
	case errors.Is(err, shared.ErrNotFound):
		setting, err = ops.NewSystemSetting(key, req.Value, req.Description)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.repo.Save(ctx, setting); err != nil {
		return nil, err
	}

	s.logger.Info("System setting saved",
		zap.String("key", key),
	)
	return setting, nil
}
