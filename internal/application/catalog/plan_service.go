package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/catalog"
	"github.com/netbill/backend/internal/domain/shared"
)

// PlanService handles service plan management
type PlanService struct {
	planRepo catalog.ServicePlanRepository
}

// NewPlanService creates a new PlanService
func NewPlanService(planRepo catalog.ServicePlanRepository) *PlanService {
	return &PlanService{
		planRepo: planRepo,
	}
}

// Create creates a new service plan
func (s *PlanService) Create(ctx context.Context, req CreatePlanRequest) (*PlanResponse, error) {
	plan, err := catalog.NewServicePlan(req.Name, catalog.PlanType(req.Type), req.Price, req.Speed)
	if err != nil {
		return nil, err
	}

	if req.DataLimit != "" || req.Description != "" {
		if err := plan.Update(req.Name, req.Speed, req.DataLimit, req.Description); err != nil {
			return nil, err
		}
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	response := ToPlanResponse(plan, 0)
	return &response, nil
}

// GetByID retrieves a plan by ID
func (s *PlanService) GetByID(ctx context.Context, planID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	count, err := s.planRepo.CountClients(ctx, planID)
	if err != nil {
		return nil, err
	}

	response := ToPlanResponse(plan, count)
	return &response, nil
}

// List retrieves all plans with their subscriber counts
func (s *PlanService) List(ctx context.Context, activeOnly bool) ([]PlanResponse, error) {
	var plans []catalog.ServicePlan
	var err error
	if activeOnly {
		plans, err = s.planRepo.FindActive(ctx)
	} else {
		plans, err = s.planRepo.FindAll(ctx, shared.DefaultFilter())
	}
	if err != nil {
		return nil, err
	}

	responses := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		count, err := s.planRepo.CountClients(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, ToPlanResponse(&plans[i], count))
	}
	return responses, nil
}

// Update updates a plan's details and optionally its price
func (s *PlanService) Update(ctx context.Context, planID uuid.UUID, req UpdatePlanRequest) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if err := plan.Update(req.Name, req.Speed, req.DataLimit, req.Description); err != nil {
		return nil, err
	}

	if req.Price != nil {
		if err := plan.ChangePrice(*req.Price); err != nil {
			return nil, err
		}
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	count, err := s.planRepo.CountClients(ctx, planID)
	if err != nil {
		return nil, err
	}

	response := ToPlanResponse(plan, count)
	return &response, nil
}

// SetActive activates or deactivates a plan for new registrations
func (s *PlanService) SetActive(ctx context.Context, planID uuid.UUID, active bool) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if active {
		plan.Activate()
	} else {
		plan.Deactivate()
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	count, err := s.planRepo.CountClients(ctx, planID)
	if err != nil {
		return nil, err
	}

	response := ToPlanResponse(plan, count)
	return &response, nil
}

// Delete removes a plan. Plans with subscribed clients are protected;
// the repository returns shared.ErrPlanInUse for those.
func (s *PlanService) Delete(ctx context.Context, planID uuid.UUID) error {
	count, err := s.planRepo.CountClients(ctx, planID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrPlanInUse
	}
	return s.planRepo.Delete(ctx, planID)
}
