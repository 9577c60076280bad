package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reportapp "github.com/kontor/backend/internal/application/report"
)

// ReportHandler handles reconciliation report API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.BudgetReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.BudgetReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Reconcile godoc
// @ID           getOrderReconciliation
// @Summary      Get the budget reconciliation report of an order
// @Description  Compare the latest budget plan against recorded actual costs.
// @Description  Pass with_months=true to include the per-month breakdown.
// @Description  Reports are cached and invalidated when underlying data changes.
// @Tags         reports
// @Produce      json
// @Param        order_id path string true "Order ID" format(uuid)
// @Param        with_months query bool false "Include per-month breakdown" default(false)
// @Success      200 {object} APIResponse[budget.Reconciliation]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/orders/{order_id}/reconciliation [get]
func (h *ReportHandler) Reconcile(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	withMonths := false
	if raw := c.Query("with_months"); raw != "" {
		withMonths, err = strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid with_months value")
			return
		}
	}

	report, err := h.reportService.Reconcile(c.Request.Context(), orderID, withMonths)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}
