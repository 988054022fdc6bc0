package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notifyapp "github.com/netbill/backend/internal/application/notify"
)

// NotificationHandler serves the messaging endpoints
type NotificationHandler struct {
	BaseHandler
	notificationService *notifyapp.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *notifyapp.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterRoutes mounts the notification endpoints
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	notifications.POST("/reminder", h.SendReminder)
	notifications.POST("/reminders", h.SendBulkReminders)
	notifications.POST("/notice", h.SendNotice)
}

type reminderRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
	Channel  string    `json:"channel" binding:"required,oneof=sms whatsapp"`
}

// SendReminder messages one client about their balance
func (h *NotificationHandler) SendReminder(c *gin.Context) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	detail, err := h.notificationService.SendReminder(c.Request.Context(), req.ClientID, notifyapp.Channel(req.Channel))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

type bulkReminderRequest struct {
	Channel     string `json:"channel" binding:"required,oneof=sms whatsapp"`
	OnlyOverdue bool   `json:"only_overdue"`
}

// SendBulkReminders messages every client with money owing
func (h *NotificationHandler) SendBulkReminders(c *gin.Context) {
	var req bulkReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.notificationService.SendBulkReminders(c.Request.Context(), notifyapp.Channel(req.Channel), req.OnlyOverdue)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

type noticeRequest struct {
	Channel string `json:"channel" binding:"required,oneof=sms whatsapp"`
	Message string `json:"message" binding:"required,max=480"`
}

// SendNotice broadcasts a service message to all active clients
func (h *NotificationHandler) SendNotice(c *gin.Context) {
	var req noticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.notificationService.SendServiceNotice(c.Request.Context(), notifyapp.Channel(req.Channel), req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
