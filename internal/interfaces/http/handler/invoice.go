package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/netbill/backend/internal/application/billing"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/interfaces/http/dto"
)

// InvoiceHandler serves the invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes mounts the invoice endpoints
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.POST("", h.Issue)
	invoices.GET("", h.List)
	invoices.GET("/:id", h.Get)
	invoices.POST("/:id/send", h.Send)
	invoices.POST("/:id/cancel", h.Cancel)
	invoices.POST("/generate-monthly", h.GenerateMonthly)
	invoices.POST("/mark-overdue", h.MarkOverdue)

	rg.GET("/clients/:id/invoices", h.ListByClient)
}

// Issue creates an invoice for a client
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req billingapp.IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.Issue(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List returns a page of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	listReq.Normalize()

	filter := shared.DefaultFilter()
	filter.Page = listReq.Page
	filter.PageSize = listReq.PageSize
	filter.Search = listReq.Search
	if listReq.OrderBy != "" {
		filter.OrderBy = listReq.OrderBy
	}
	if listReq.OrderDir != "" {
		filter.OrderDir = listReq.OrderDir
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Get returns one invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListByClient returns a client's invoices, newest first
func (h *InvoiceHandler) ListByClient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	invoices, err := h.invoiceService.ListByClient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Send marks a draft invoice as sent
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.Send(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Cancel voids an unpaid invoice
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// GenerateMonthly issues invoices for every client due for billing
func (h *InvoiceHandler) GenerateMonthly(c *gin.Context) {
	count, err := h.invoiceService.GenerateMonthly(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"generated": count})
}

// MarkOverdue flags unpaid invoices past their due date
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	count, err := h.invoiceService.MarkOverdue(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"marked": count})
}
