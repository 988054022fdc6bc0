package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/subscriber"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNetworkUsageRepository implements NetworkUsageRepository using GORM
type GormNetworkUsageRepository struct {
	db *gorm.DB
}

// NewGormNetworkUsageRepository creates a new GormNetworkUsageRepository
func NewGormNetworkUsageRepository(db *gorm.DB) *GormNetworkUsageRepository {
	return &GormNetworkUsageRepository{db: db}
}

// Upsert inserts a usage row or replaces the counters for an existing
// client/day pair. Router polls report cumulative daily totals, so the
// latest sample wins.
func (r *GormNetworkUsageRepository) Upsert(ctx context.Context, usage *subscriber.NetworkUsage) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "client_id"}, {Name: "usage_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"download_bytes", "upload_bytes", "updated_at",
			}),
		}).
		Create(usage).Error
}

// FindByClient returns usage rows for a client within a date range
func (r *GormNetworkUsageRepository) FindByClient(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]subscriber.NetworkUsage, error) {
	var rows []subscriber.NetworkUsage
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND usage_date >= ? AND usage_date <= ?", clientID, from, to).
		Order("usage_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TotalsSince sums download and upload bytes across all clients since a date
func (r *GormNetworkUsageRepository) TotalsSince(ctx context.Context, since time.Time) (int64, int64, error) {
	var totals struct {
		Download int64
		Upload   int64
	}
	err := r.db.WithContext(ctx).Model(&subscriber.NetworkUsage{}).
		Select("COALESCE(SUM(download_bytes), 0) AS download, COALESCE(SUM(upload_bytes), 0) AS upload").
		Where("usage_date >= ?", since).
		Scan(&totals).Error
	if err != nil {
		return 0, 0, err
	}
	return totals.Download, totals.Upload, nil
}

// DeleteOlderThan prunes usage rows older than the cutoff and reports how
// many were removed
func (r *GormNetworkUsageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("usage_date < ?", cutoff).
		Delete(&subscriber.NetworkUsage{})
	return result.RowsAffected, result.Error
}
