package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	budgetapp "github.com/kontor/backend/internal/application/budget"
)

// BudgetHandler handles budget plan and actual cost API endpoints
type BudgetHandler struct {
	BaseHandler
	budgetService *budgetapp.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *budgetapp.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
	}
}

// SubmitPlan godoc
// @ID           submitBudgetPlan
// @Summary      Submit a budget plan version
// @Description  Submit a new budget plan version for an order. Versions are
// @Description  append-only; the latest version is authoritative.
// @Tags         budget
// @Accept       json
// @Produce      json
// @Param        request body budgetapp.SubmitBudgetPlanRequest true "Budget plan submission"
// @Success      201 {object} APIResponse[budgetapp.BudgetPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /budget/plans [post]
func (h *BudgetHandler) SubmitPlan(c *gin.Context) {
	var req budgetapp.SubmitBudgetPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.budgetService.SubmitPlan(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// GetLatestPlan godoc
// @ID           getLatestBudgetPlan
// @Summary      Get the latest budget plan of an order
// @Description  Retrieve the most recent budget plan version for an order
// @Tags         budget
// @Produce      json
// @Param        order_id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[budgetapp.BudgetPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /budget/orders/{order_id}/plan [get]
func (h *BudgetHandler) GetLatestPlan(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	plan, err := h.budgetService.GetLatestPlan(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// ListPlanVersions godoc
// @ID           listBudgetPlanVersions
// @Summary      List budget plan versions of an order
// @Description  Retrieve all submitted budget plan versions for an order,
// @Description  newest first
// @Tags         budget
// @Produce      json
// @Param        order_id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]budgetapp.BudgetPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /budget/orders/{order_id}/plan/versions [get]
func (h *BudgetHandler) ListPlanVersions(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	plans, err := h.budgetService.ListPlanVersions(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plans)
}

// RecordCost godoc
// @ID           recordActualCost
// @Summary      Record an actual cost
// @Description  Record an actual cost against an order. The booking month
// @Description  defaults to the cost date and can be overridden.
// @Tags         budget
// @Accept       json
// @Produce      json
// @Param        request body budgetapp.RecordActualCostRequest true "Actual cost details"
// @Success      201 {object} APIResponse[budgetapp.ActualCostResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /budget/costs [post]
func (h *BudgetHandler) RecordCost(c *gin.Context) {
	var req budgetapp.RecordActualCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cost, err := h.budgetService.RecordCost(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, cost)
}

// ListCosts godoc
// @ID           listActualCosts
// @Summary      List actual costs of an order
// @Description  Retrieve all actual costs recorded against an order
// @Tags         budget
// @Produce      json
// @Param        order_id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[[]budgetapp.ActualCostResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /budget/orders/{order_id}/costs [get]
func (h *BudgetHandler) ListCosts(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	costs, err := h.budgetService.ListCosts(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, costs)
}

// MarkCostPaid godoc
// @ID           markActualCostPaid
// @Summary      Mark an actual cost as paid
// @Description  Transition a recorded cost to paid
// @Tags         budget
// @Produce      json
// @Param        id path string true "Actual cost ID" format(uuid)
// @Success      200 {object} APIResponse[budgetapp.ActualCostResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /budget/costs/{id}/paid [post]
func (h *BudgetHandler) MarkCostPaid(c *gin.Context) {
	costID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost ID format")
		return
	}

	cost, err := h.budgetService.MarkCostPaid(c.Request.Context(), costID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cost)
}
