package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/netbill/backend/internal/application/catalog"
)

// PlanHandler serves the service plan endpoints
type PlanHandler struct {
	BaseHandler
	planService *catalogapp.PlanService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planService *catalogapp.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// RegisterRoutes mounts the plan endpoints
func (h *PlanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/plans")
	plans.POST("", h.Create)
	plans.GET("", h.List)
	plans.GET("/:id", h.Get)
	plans.PUT("/:id", h.Update)
	plans.POST("/:id/activate", h.Activate)
	plans.POST("/:id/deactivate", h.Deactivate)
	plans.DELETE("/:id", h.Delete)
}

// Create adds a service plan
func (h *PlanHandler) Create(c *gin.Context) {
	var req catalogapp.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plan)
}

// List returns plans, optionally only active ones
func (h *PlanHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	plans, err := h.planService.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plans)
}

// Get returns one plan with its subscriber count
func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	plan, err := h.planService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Update edits a plan's details
func (h *PlanHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	var req catalogapp.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Activate makes a plan available for new subscriptions
func (h *PlanHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate retires a plan without touching existing subscribers
func (h *PlanHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *PlanHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	plan, err := h.planService.SetActive(c.Request.Context(), id, active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Delete removes a plan that has no subscribers
func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	if err := h.planService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
