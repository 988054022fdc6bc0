package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
)

// ServicePlanRepository defines persistence operations for service plans
type ServicePlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServicePlan, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ServicePlan, error)
	FindActive(ctx context.Context) ([]ServicePlan, error)
	Save(ctx context.Context, plan *ServicePlan) error
	// Delete removes a plan. Implementations must refuse with
	// shared.ErrPlanInUse while any client still references the plan.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountClients(ctx context.Context, planID uuid.UUID) (int64, error)
}
