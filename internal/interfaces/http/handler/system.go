package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	opsapp "github.com/netbill/backend/internal/application/ops"
	subscriberapp "github.com/netbill/backend/internal/application/subscriber"
	"github.com/netbill/backend/internal/interfaces/http/middleware"
)

// SystemHandler serves the administrative operations endpoints
type SystemHandler struct {
	BaseHandler
	resetService    *opsapp.ResetService
	backupService   *opsapp.BackupService
	statsService    *opsapp.StatsService
	settingsService *opsapp.SettingsService
	usageService    *subscriberapp.UsageService
	retentionDays   int
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(resetService *opsapp.ResetService, backupService *opsapp.BackupService, statsService *opsapp.StatsService, settingsService *opsapp.SettingsService, usageService *subscriberapp.UsageService, retentionDays int) *SystemHandler {
	return &SystemHandler{
		resetService:    resetService,
		backupService:   backupService,
		statsService:    statsService,
		settingsService: settingsService,
		usageService:    usageService,
		retentionDays:   retentionDays,
	}
}

// RegisterRoutes mounts the system endpoints, all admin-only
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system", middleware.AdminOnly())
	system.POST("/reset", h.Reset)
	system.GET("/reset-history", h.ResetHistory)
	system.POST("/backup", h.Backup)
	system.GET("/stats", h.Stats)
	system.POST("/usage/sync", h.SyncUsage)
	system.POST("/usage/prune", h.PruneUsage)
	system.GET("/settings", h.ListSettings)
	system.GET("/settings/:key", h.GetSetting)
	system.PUT("/settings/:key", h.PutSetting)
}

// Reset wipes operational data after an explicit confirmation
func (h *SystemHandler) Reset(c *gin.Context) {
	var req opsapp.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if claims, ok := middleware.GetClaims(c); ok {
		req.PerformedBy = claims.Username
	}

	result, err := h.resetService.Execute(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ResetHistory returns the most recent reset audit entries
func (h *SystemHandler) ResetHistory(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	history, err := h.resetService.History(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// Backup snapshots the dataset to object storage
func (h *SystemHandler) Backup(c *gin.Context) {
	result, err := h.backupService.Run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Stats returns row counts and usage totals
func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Snapshot(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// SyncUsage pulls traffic counters from the router
func (h *SystemHandler) SyncUsage(c *gin.Context) {
	count, err := h.usageService.SyncFromRouter(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"synced": count})
}

// PruneUsage deletes usage rows older than the retention window
func (h *SystemHandler) PruneUsage(c *gin.Context) {
	deleted, err := h.usageService.PruneOld(c.Request.Context(), h.retentionDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": deleted})
}

// ListSettings returns all runtime settings
func (h *SystemHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingsService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// GetSetting returns one setting by key
func (h *SystemHandler) GetSetting(c *gin.Context) {
	setting, err := h.settingsService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, setting)
}

// PutSetting creates or replaces a setting value
func (h *SystemHandler) PutSetting(c *gin.Context) {
	var req opsapp.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	setting, err := h.settingsService.Upsert(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, setting)
}
