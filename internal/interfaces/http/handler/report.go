package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/netbill/backend/internal/application/report"
	"github.com/netbill/backend/internal/domain/report"
	"github.com/netbill/backend/internal/interfaces/http/dto"
)

// ReportHandler serves the reporting and dashboard endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
	exportService *reportapp.ExportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService, exportService *reportapp.ExportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
	}
}

// RegisterRoutes mounts the reporting endpoints
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)

	reports := rg.Group("/reports")
	reports.GET("/summary", h.Summary)
	reports.GET("/payment-methods", h.PaymentMethods)
	reports.GET("/aging", h.Aging)
	reports.GET("/revenue-trend", h.RevenueTrend)
	reports.GET("/plan-performance", h.PlanPerformance)
	reports.GET("/export/payments", h.ExportPayments)
	reports.GET("/export/clients", h.ExportClients)
}

func (h *ReportHandler) bindPeriod(c *gin.Context) (report.ReportFilter, bool) {
	var rangeReq dto.DateRangeRequest
	if err := c.ShouldBindQuery(&rangeReq); err != nil {
		h.BadRequest(c, err.Error())
		return report.ReportFilter{}, false
	}
	from, to := rangeReq.Period(time.Now())
	return report.ReportFilter{From: from, To: to}, true
}

// Dashboard returns the headline numbers for the landing screen
func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Summary returns invoiced/collected/outstanding totals for a period
func (h *ReportHandler) Summary(c *gin.Context) {
	filter, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	summary, err := h.reportService.BillingSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// PaymentMethods returns collections grouped by payment method
func (h *ReportHandler) PaymentMethods(c *gin.Context) {
	filter, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	breakdown, err := h.reportService.PaymentMethodBreakdown(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}

// Aging buckets outstanding invoices by how overdue they are
func (h *ReportHandler) Aging(c *gin.Context) {
	aging, err := h.reportService.InvoiceAging(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, aging)
}

// RevenueTrend returns monthly collections for the trailing months
func (h *ReportHandler) RevenueTrend(c *gin.Context) {
	months := 6
	if v := c.Query("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid months value")
			return
		}
		months = parsed
	}

	trend, err := h.reportService.RevenueTrend(c.Request.Context(), months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trend)
}

// PlanPerformance compares plans by subscribers and collections
func (h *ReportHandler) PlanPerformance(c *gin.Context) {
	filter, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	performance, err := h.reportService.PlanPerformance(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, performance)
}

// ExportPayments streams the period's payments as a CSV download
func (h *ReportHandler) ExportPayments(c *gin.Context) {
	var rangeReq dto.DateRangeRequest
	if err := c.ShouldBindQuery(&rangeReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	from, to := rangeReq.Period(time.Now())

	data, err := h.exportService.ExportPayments(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendCSV(c, fmt.Sprintf("payments-%s.csv", from.Format("2006-01")), data)
}

// ExportClients streams the client roster as a CSV download
func (h *ReportHandler) ExportClients(c *gin.Context) {
	data, err := h.exportService.ExportClients(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendCSV(c, fmt.Sprintf("clients-%s.csv", time.Now().Format("2006-01-02")), data)
}

func (h *ReportHandler) sendCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "text/csv; charset=utf-8", data)
}
