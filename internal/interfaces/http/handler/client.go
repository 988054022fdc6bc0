package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	subscriberapp "github.com/netbill/backend/internal/application/subscriber"
)

// ClientHandler serves the subscriber management endpoints
type ClientHandler struct {
	BaseHandler
	clientService *subscriberapp.ClientService
	usageService  *subscriberapp.UsageService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *subscriberapp.ClientService, usageService *subscriberapp.UsageService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		usageService:  usageService,
	}
}

// RegisterRoutes mounts the client endpoints
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clients := rg.Group("/clients")
	clients.POST("", h.Register)
	clients.GET("", h.List)
	clients.GET("/:id", h.Get)
	clients.PUT("/:id", h.Update)
	clients.POST("/:id/suspend", h.Suspend)
	clients.POST("/:id/reactivate", h.Reactivate)
	clients.POST("/:id/deactivate", h.Deactivate)
	clients.GET("/:id/usage", h.Usage)
	clients.POST("/suspend-overdue", h.SuspendOverdue)
}

// Register creates a client and provisions it on the router
func (h *ClientHandler) Register(c *gin.Context) {
	var req subscriberapp.RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.clientService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List returns a page of clients
func (h *ClientHandler) List(c *gin.Context) {
	var filter subscriberapp.ClientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.clientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one client
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Update edits a client's details
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var req subscriberapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Suspend cuts a client's service
func (h *ClientHandler) Suspend(c *gin.Context) {
	h.transition(c, h.clientService.Suspend)
}

// Reactivate restores a suspended client
func (h *ClientHandler) Reactivate(c *gin.Context) {
	h.transition(c, h.clientService.Reactivate)
}

// Deactivate closes a client's account
func (h *ClientHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.clientService.Deactivate)
}

func (h *ClientHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*subscriberapp.ClientResponse, error)) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Usage returns a client's daily usage over a date range
func (h *ClientHandler) Usage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.BadRequest(c, "Invalid from date")
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.BadRequest(c, "Invalid to date")
			return
		}
		to = parsed
	}

	usage, err := h.usageService.ClientUsage(c.Request.Context(), id, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, usage)
}

// SuspendOverdue suspends every active client past their payment date
func (h *ClientHandler) SuspendOverdue(c *gin.Context) {
	count, err := h.clientService.SuspendOverdue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"suspended": count})
}
