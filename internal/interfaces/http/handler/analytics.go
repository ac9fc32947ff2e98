package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appanalytics "github.com/salonos/backend/internal/application/analytics"
	"github.com/salonos/backend/internal/domain/analytics"
)

// AnalyticsService is the application surface the handler depends on.
type AnalyticsService interface {
	GetDashboard(ctx context.Context, orgID uuid.UUID, q appanalytics.Query) (*analytics.Result, error)
	GetKPIs(ctx context.Context, orgID uuid.UUID, q appanalytics.Query) (*analytics.KPISet, error)
	GetMargins(ctx context.Context, orgID uuid.UUID, q appanalytics.Query) (*analytics.Margins, error)
	GetBreakEven(ctx context.Context, orgID uuid.UUID, q appanalytics.Query) (*analytics.BreakEven, error)
	GetProjection(ctx context.Context, orgID uuid.UUID, q appanalytics.Query) (*analytics.Projection, error)
	GetOccupancy(ctx context.Context, orgID uuid.UUID, q appanalytics.Query) (*analytics.Occupancy, error)
	GetAlerts(ctx context.Context, orgID uuid.UUID, q appanalytics.Query) ([]analytics.Alert, error)
	GetReconciliationDifferences(ctx context.Context, orgID uuid.UUID, q appanalytics.Query) ([]analytics.GatewayReconciliation, error)
	ExportKPIs(ctx context.Context, orgID uuid.UUID, q appanalytics.Query, format appanalytics.ExportFormat) (*appanalytics.ExportFile, error)
}

// AnalyticsHandler serves the financial analytics endpoints.
type AnalyticsHandler struct {
	BaseHandler
	service AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// RegisterRoutes registers analytics routes on the given router group
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analyticsGroup := rg.Group("/analytics")
	{
		analyticsGroup.GET("/dashboard", h.GetDashboard)
		analyticsGroup.GET("/kpis", h.GetKPIs)
		analyticsGroup.GET("/kpis/export", h.ExportKPIs)
		analyticsGroup.GET("/margins", h.GetMargins)
		analyticsGroup.GET("/break-even", h.GetBreakEven)
		analyticsGroup.GET("/projection", h.GetProjection)
		analyticsGroup.GET("/occupancy", h.GetOccupancy)
		analyticsGroup.GET("/alerts", h.GetAlerts)
		analyticsGroup.GET("/reconciliation/differences", h.GetReconciliationDifferences)
	}
}

// scopeParams is the raw query-string shape; location_id is bound as a
// string because gin cannot bind into *uuid.UUID.
type scopeParams struct {
	LocationID string `form:"location_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

// bindScope extracts the org scope and query filters shared by every endpoint.
func (h *AnalyticsHandler) bindScope(c *gin.Context) (uuid.UUID, appanalytics.Query, bool) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, appanalytics.Query{}, false
	}

	var params scopeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return uuid.Nil, appanalytics.Query{}, false
	}

	q := appanalytics.Query{
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
	}
	if params.LocationID != "" {
		locationID, err := uuid.Parse(params.LocationID)
		if err != nil {
			h.BadRequest(c, "Invalid location_id")
			return uuid.Nil, appanalytics.Query{}, false
		}
		q.LocationID = &locationID
	}
	return orgID, q, true
}

// GetDashboard returns the complete analytics result for the requested window.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	result, err := h.service.GetDashboard(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetKPIs returns the windowed KPI set.
func (h *AnalyticsHandler) GetKPIs(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	kpis, err := h.service.GetKPIs(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kpis)
}

// ExportKPIs streams the KPI set as a CSV or XLSX download.
func (h *AnalyticsHandler) ExportKPIs(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	format := appanalytics.ExportFormat(c.DefaultQuery("format", string(appanalytics.ExportFormatCSV)))
	file, err := h.service.ExportKPIs(c.Request.Context(), orgID, q, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// GetMargins returns percentage margins for the window.
func (h *AnalyticsHandler) GetMargins(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	margins, err := h.service.GetMargins(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, margins)
}

// GetBreakEven returns the break-even figures for the window.
func (h *AnalyticsHandler) GetBreakEven(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	be, err := h.service.GetBreakEven(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, be)
}

// GetProjection returns the linear revenue projection for the window.
func (h *AnalyticsHandler) GetProjection(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	projection, err := h.service.GetProjection(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, projection)
}

// GetOccupancy returns the completion-ratio occupancy for the window.
func (h *AnalyticsHandler) GetOccupancy(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	occupancy, err := h.service.GetOccupancy(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, occupancy)
}

// GetAlerts returns the operational alerts for the organization.
func (h *AnalyticsHandler) GetAlerts(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	alerts, err := h.service.GetAlerts(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}

// GetReconciliationDifferences returns gateway settlement rows whose settled
// amount deviates from the sold amount.
func (h *AnalyticsHandler) GetReconciliationDifferences(c *gin.Context) {
	orgID, q, ok := h.bindScope(c)
	if !ok {
		return
	}

	rows, err := h.service.GetReconciliationDifferences(c.Request.Context(), orgID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}
