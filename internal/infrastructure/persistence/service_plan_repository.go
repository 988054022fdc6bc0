package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/catalog"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"gorm.io/gorm"
)

// GormServicePlanRepository implements ServicePlanRepository using GORM
type GormServicePlanRepository struct {
	db *gorm.DB
}

// NewGormServicePlanRepository creates a new GormServicePlanRepository
func NewGormServicePlanRepository(db *gorm.DB) *GormServicePlanRepository {
	return &GormServicePlanRepository{db: db}
}

// FindByID finds a service plan by its ID
func (r *GormServicePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ServicePlan, error) {
	var plan catalog.ServicePlan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindAll finds all service plans matching the filter
func (r *GormServicePlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ServicePlan, error) {
	var plans []catalog.ServicePlan
	query := r.db.WithContext(ctx).Model(&catalog.ServicePlan{})

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	orderBy := ValidateSortField(filter.OrderBy, PlanSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindActive finds all plans currently offered to new clients
func (r *GormServicePlanRepository) FindActive(ctx context.Context) ([]catalog.ServicePlan, error) {
	var plans []catalog.ServicePlan
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Save creates or updates a service plan
func (r *GormServicePlanRepository) Save(ctx context.Context, plan *catalog.ServicePlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// Delete removes a plan unless clients still reference it
func (r *GormServicePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	inUse, err := r.CountClients(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return shared.ErrPlanInUse
	}

	result := r.db.WithContext(ctx).Delete(&catalog.ServicePlan{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the total number of service plans
func (r *GormServicePlanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.ServicePlan{}).Count(&count).Error
	return count, err
}

// CountClients returns how many clients are subscribed to the plan
func (r *GormServicePlanRepository) CountClients(ctx context.Context, planID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&subscriber.Client{}).
		Where("service_plan_id = ?", planID).
		Count(&count).Error
	return count, err
}
