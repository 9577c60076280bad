package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/kontor/backend/internal/application/billing"
)

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *billingapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *billingapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Create godoc
// @ID           createOrder
// @Summary      Create a new order
// @Description  Create an order for an organization. The order number is
// @Description  allocated atomically from the per-scope sequence at creation.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateOrderRequest true "Order creation request"
// @Success      201 {object} APIResponse[billingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req billingapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getOrderById
// @Summary      Get order by ID
// @Description  Retrieve an order by its ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByNumber godoc
// @ID           getOrderByNumber
// @Summary      Get order by number
// @Description  Retrieve an order by its assigned order number
// @Tags         orders
// @Produce      json
// @Param        number path string true "Order number" example(2026NEU01)
// @Success      200 {object} APIResponse[billingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders/number/{number} [get]
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	order, err := h.orderService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Retrieve a paginated list of orders with optional filtering
// @Tags         orders
// @Produce      json
// @Param        search query string false "Search term (order number, organization name)"
// @Param        organization_id query string false "Organization ID" format(uuid)
// @Param        status query string false "Order status" Enums(draft, active, completed, cancelled)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]billingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter billingapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Activate godoc
// @ID           activateOrder
// @Summary      Activate an order
// @Description  Transition a draft order to active
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders/{id}/activate [post]
func (h *OrderHandler) Activate(c *gin.Context) {
	h.lifecycle(c, h.orderService.Activate)
}

// Complete godoc
// @ID           completeOrder
// @Summary      Complete an order
// @Description  Transition an active order to completed
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	h.lifecycle(c, h.orderService.Complete)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel an order
// @Description  Cancel a draft or active order. The allocated order number is
// @Description  not returned to the sequence.
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.lifecycle(c, h.orderService.Cancel)
}

func (h *OrderHandler) lifecycle(c *gin.Context, action func(ctx context.Context, id uuid.UUID) (*billingapp.OrderResponse, error)) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := action(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}
