package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/netbill/backend/internal/domain/network"
	"github.com/netbill/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// NetworkHandler exposes router health and live interface counters. It
// talks to the router port directly; nothing here touches the database.
type NetworkHandler struct {
	BaseHandler
	router network.RouterClient
	logger *zap.Logger
}

// NewNetworkHandler creates a new NetworkHandler
func NewNetworkHandler(router network.RouterClient, logger *zap.Logger) *NetworkHandler {
	return &NetworkHandler{router: router, logger: logger}
}

// RegisterRoutes mounts the network endpoints
func (h *NetworkHandler) RegisterRoutes(rg *gin.RouterGroup) {
	net := rg.Group("/network")
	{
		net.GET("/status", h.Status)
		net.GET("/resources", h.Resources)
		net.GET("/interfaces", h.Interfaces)
	}
}

type networkStatusResponse struct {
	Online    bool      `json:"online"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// Status reports whether the router answers
func (h *NetworkHandler) Status(c *gin.Context) {
	status := networkStatusResponse{Online: true, CheckedAt: time.Now()}
	if err := h.router.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Router unreachable", zap.Error(err))
		status.Online = false
		status.Error = err.Error()
	}
	h.Success(c, status)
}

type routerResourcesResponse struct {
	Uptime      string `json:"uptime"`
	Version     string `json:"version"`
	BoardName   string `json:"board_name"`
	CPULoad     int    `json:"cpu_load"`
	FreeMemory  int64  `json:"free_memory"`
	TotalMemory int64  `json:"total_memory"`
}

// Resources returns the router's health counters
func (h *NetworkHandler) Resources(c *gin.Context) {
	res, err := h.router.Resources(c.Request.Context())
	if err != nil {
		h.logger.Warn("Router resource query failed", zap.Error(err))
		h.respondError(c, dto.GetHTTPStatus(dto.ErrCodeGatewayUnavailable), dto.ErrCodeGatewayUnavailable, "Router request failed")
		return
	}
	h.Success(c, routerResourcesResponse{
		Uptime:      res.Uptime,
		Version:     res.Version,
		BoardName:   res.BoardName,
		CPULoad:     res.CPULoad,
		FreeMemory:  res.FreeMemory,
		TotalMemory: res.TotalMemory,
	})
}

type interfaceSampleResponse struct {
	Username      string    `json:"username"`
	DownloadBytes int64     `json:"download_bytes"`
	UploadBytes   int64     `json:"upload_bytes"`
	SampledAt     time.Time `json:"sampled_at"`
}

// Interfaces returns live per-subscriber traffic counters
func (h *NetworkHandler) Interfaces(c *gin.Context) {
	samples, err := h.router.FetchUsage(c.Request.Context())
	if err != nil {
		h.logger.Warn("Interface counter query failed", zap.Error(err))
		h.respondError(c, dto.GetHTTPStatus(dto.ErrCodeGatewayUnavailable), dto.ErrCodeGatewayUnavailable, "Router request failed")
		return
	}
	out := make([]interfaceSampleResponse, 0, len(samples))
	for _, s := range samples {
		out = append(out, interfaceSampleResponse{
			Username:      s.Username,
			DownloadBytes: s.DownloadBytes,
			UploadBytes:   s.UploadBytes,
			SampledAt:     s.SampledAt,
		})
	}
	h.Success(c, out)
}
