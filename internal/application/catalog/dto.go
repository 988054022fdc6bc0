package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreatePlanRequest contains the data needed to create a service plan
type CreatePlanRequest struct {
	Name        string          `json:"name" binding:"required"`
	Type        string          `json:"type" binding:"required,oneof=pppoe hotspot business"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Speed       string          `json:"speed"`
	DataLimit   string          `json:"data_limit"`
	Description string          `json:"description"`
}

// UpdatePlanRequest contains the updatable fields of a plan
type UpdatePlanRequest struct {
	Name        string           `json:"name" binding:"required"`
	Price       *decimal.Decimal `json:"price"`
	Speed       string           `json:"speed"`
	DataLimit   string           `json:"data_limit"`
	Description string           `json:"description"`
}

// PlanResponse is the API representation of a service plan
type PlanResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Price       decimal.Decimal `json:"price"`
	Speed       string          `json:"speed"`
	DataLimit   string          `json:"data_limit"`
	Description string          `json:"description"`
	IsActive    bool            `json:"is_active"`
	ClientCount int64           `json:"client_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToPlanResponse converts a domain plan to its API representation
func ToPlanResponse(plan *catalog.ServicePlan, clientCount int64) PlanResponse {
	return PlanResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		Type:        string(plan.Type),
		Price:       plan.Price,
		Speed:       plan.Speed,
		DataLimit:   plan.DataLimit,
		Description: plan.Description,
		IsActive:    plan.IsActive,
		ClientCount: clientCount,
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
	}
}
