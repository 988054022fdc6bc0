package catalog

import (
	"strings"

	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PlanType represents the connection type a service plan is sold for
type PlanType string

const (
	PlanTypePPPoE    PlanType = "pppoe"
	PlanTypeHotspot  PlanType = "hotspot"
	PlanTypeBusiness PlanType = "business" // Business fiber
)

// ServicePlan represents an internet service plan in the catalog.
// It is the aggregate root for plan-related operations.
type ServicePlan struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(100);not null"`
	Type        PlanType        `gorm:"type:varchar(20);not null;default:'pppoe'"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"` // Monthly price in KES
	Speed       string          `gorm:"type:varchar(50);not null;default:'10Mbps/5Mbps'"`
	DataLimit   string          `gorm:"type:varchar(50)"` // Empty means unlimited
	Description string          `gorm:"type:text"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ServicePlan) TableName() string {
	return "service_plans"
}

// NewServicePlan creates a new service plan with required fields
func NewServicePlan(name string, planType PlanType, price decimal.Decimal, speed string) (*ServicePlan, error) {
	if err := validatePlanName(name); err != nil {
		return nil, err
	}
	if err := validatePlanType(planType); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Plan price cannot be negative")
	}
	if speed == "" {
		speed = "10Mbps/5Mbps"
	}

	plan := &ServicePlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              planType,
		Price:             price,
		Speed:             speed,
		IsActive:          true,
	}

	plan.AddDomainEvent(NewPlanCreatedEvent(plan))

	return plan, nil
}

// Update updates the plan's descriptive fields
func (p *ServicePlan) Update(name, speed, dataLimit, description string) error {
	if err := validatePlanName(name); err != nil {
		return err
	}
	p.Name = name
	if speed != "" {
		p.Speed = speed
	}
	p.DataLimit = dataLimit
	p.Description = description
	return nil
}

// ChangePrice updates the monthly price. Existing clients keep the fee
// captured at registration; only new registrations see the new price.
func (p *ServicePlan) ChangePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Plan price cannot be negative")
	}
	old := p.Price
	p.Price = price
	p.AddDomainEvent(NewPlanPriceChangedEvent(p, old))
	return nil
}

// Activate makes the plan available for new registrations
func (p *ServicePlan) Activate() {
	p.IsActive = true
}

// Deactivate withdraws the plan from new registrations
func (p *ServicePlan) Deactivate() {
	p.IsActive = false
}

func validatePlanName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Plan name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Plan name cannot exceed 100 characters")
	}
	return nil
}

func validatePlanType(planType PlanType) error {
	switch planType {
	case PlanTypePPPoE, PlanTypeHotspot, PlanTypeBusiness:
		return nil
	default:
		return shared.NewDomainError("INVALID_PLAN_TYPE", "Plan type must be pppoe, hotspot or business")
	}
}
