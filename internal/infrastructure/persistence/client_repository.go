package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscriber.Client, error) {
	var client subscriber.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// FindByUsername finds a client by its router username
func (r *GormClientRepository) FindByUsername(ctx context.Context, username string) (*subscriber.Client, error) {
	var client subscriber.Client
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// FindByPhone finds a client by its normalized phone number
func (r *GormClientRepository) FindByPhone(ctx context.Context, phone string) (*subscriber.Client, error) {
	var client subscriber.Client
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// FindAll finds clients matching the filter and returns the unpaged total
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]subscriber.Client, int64, error) {
	var clients []subscriber.Client
	query := r.db.WithContext(ctx).Model(&subscriber.Client{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR username ILIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ClientSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// FindByStatus finds clients in a given service status
func (r *GormClientRepository) FindByStatus(ctx context.Context, status subscriber.ClientStatus, filter shared.Filter) ([]subscriber.Client, error) {
	var clients []subscriber.Client
	query := r.db.WithContext(ctx).Model(&subscriber.Client{}).
		Where("status = ?", status)

	orderBy := ValidateSortField(filter.OrderBy, ClientSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindByPlan finds all clients subscribed to a service plan
func (r *GormClientRepository) FindByPlan(ctx context.Context, planID uuid.UUID) ([]subscriber.Client, error) {
	var clients []subscriber.Client
	if err := r.db.WithContext(ctx).
		Where("service_plan_id = ?", planID).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindDueForPayment finds active clients whose next payment date has passed
func (r *GormClientRepository) FindDueForPayment(ctx context.Context, by time.Time) ([]subscriber.Client, error) {
	var clients []subscriber.Client
	if err := r.db.WithContext(ctx).
		Where("status = ? AND next_payment_date IS NOT NULL AND next_payment_date <= ?", subscriber.ClientStatusActive, by).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *subscriber.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// SaveWithLock saves with optimistic locking guarded by the aggregate version
func (r *GormClientRepository) SaveWithLock(ctx context.Context, client *subscriber.Client) error {
	client.IncrementVersion()
	client.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(client).
		Where("id = ? AND version = ?", client.ID, client.Version-1).
		Updates(map[string]interface{}{
			"balance":           client.Balance,
			"monthly_fee":       client.MonthlyFee,
			"last_payment_date": client.LastPaymentDate,
			"next_payment_date": client.NextPaymentDate,
			"status":            client.Status,
			"is_active":         client.IsActive,
			"version":           client.Version,
			"updated_at":        client.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a client. Invoices, payments and usage rows cascade via
// foreign keys in the schema.
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&subscriber.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the total number of clients
func (r *GormClientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&subscriber.Client{}).Count(&count).Error
	return count, err
}

// CountActive returns the number of clients in active service
func (r *GormClientRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&subscriber.Client{}).
		Where("status = ?", subscriber.ClientStatusActive).
		Count(&count).Error
	return count, err
}
