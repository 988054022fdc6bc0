package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/netbill/backend/internal/domain/ops"
	"go.uber.org/zap"
)

var _ ops.BackupStorage = (*LocalBackupStorage)(nil)

// LocalBackupStorage writes backup archives to a local directory. It
// serves development setups where no object store is configured.
type LocalBackupStorage struct {
	dir    string
	logger *zap.Logger
}

// NewLocalBackupStorage creates a filesystem-backed backup store
func NewLocalBackupStorage(dir string, logger *zap.Logger) (*LocalBackupStorage, error) {
	if dir == "" {
		dir = "backups"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &LocalBackupStorage{dir: dir, logger: logger}, nil
}

// Upload writes the archive to disk and returns its path
func (s *LocalBackupStorage) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if key == "" {
		return "", errors.New("backup key is required")
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	s.logger.Info("Backup written",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return path, nil
}
