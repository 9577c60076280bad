package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/kontor/backend/internal/application/billing"
)

// BillingPlanHandler handles billing plan API endpoints
type BillingPlanHandler struct {
	BaseHandler
	planService *billingapp.BillingPlanService
}

// NewBillingPlanHandler creates a new BillingPlanHandler
func NewBillingPlanHandler(planService *billingapp.BillingPlanService) *BillingPlanHandler {
	return &BillingPlanHandler{
		planService: planService,
	}
}

// Create godoc
// @ID           createBillingPlan
// @Summary      Create a billing plan
// @Description  Create the billing plan for an order. Each order holds at most
// @Description  one plan.
// @Tags         billing-plans
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateBillingPlanRequest true "Billing plan creation request"
// @Success      201 {object} APIResponse[billingapp.BillingPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/plans [post]
func (h *BillingPlanHandler) Create(c *gin.Context) {
	var req billingapp.CreateBillingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// GetByOrder godoc
// @ID           getBillingPlanByOrder
// @Summary      Get the billing plan of an order
// @Description  Retrieve the billing plan attached to an order
// @Tags         billing-plans
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.BillingPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders/{id}/plan [get]
func (h *BillingPlanHandler) GetByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	plan, err := h.planService.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// AddItem godoc
// @ID           addBillingPlanItem
// @Summary      Add an installment to a billing plan
// @Description  Append an installment to the order's billing plan
// @Tags         billing-plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body billingapp.AddPlanItemRequest true "Installment to add"
// @Success      200 {object} APIResponse[billingapp.BillingPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders/{id}/plan/items [post]
func (h *BillingPlanHandler) AddItem(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req billingapp.AddPlanItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.AddItem(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}
