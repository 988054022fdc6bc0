package catalog

import (
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeServicePlan = "ServicePlan"

// Event type constants
const (
	EventTypePlanCreated      = "ServicePlanCreated"
	EventTypePlanPriceChanged = "ServicePlanPriceChanged"
)

// PlanCreatedEvent is published when a new service plan is created
type PlanCreatedEvent struct {
	shared.BaseDomainEvent
	Name  string          `json:"name"`
	Type  PlanType        `json:"type"`
	Price decimal.Decimal `json:"price"`
}

// NewPlanCreatedEvent creates a new PlanCreatedEvent
func NewPlanCreatedEvent(plan *ServicePlan) *PlanCreatedEvent {
	return &PlanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanCreated, AggregateTypeServicePlan, plan.ID),
		Name:            plan.Name,
		Type:            plan.Type,
		Price:           plan.Price,
	}
}

// PlanPriceChangedEvent is published when a plan's price changes
type PlanPriceChangedEvent struct {
	shared.BaseDomainEvent
	OldPrice decimal.Decimal `json:"old_price"`
	NewPrice decimal.Decimal `json:"new_price"`
}

// NewPlanPriceChangedEvent creates a new PlanPriceChangedEvent
func NewPlanPriceChangedEvent(plan *ServicePlan, oldPrice decimal.Decimal) *PlanPriceChangedEvent {
	return &PlanPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanPriceChanged, AggregateTypeServicePlan, plan.ID),
		OldPrice:        oldPrice,
		NewPrice:        plan.Price,
	}
}
