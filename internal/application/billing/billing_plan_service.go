package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BillingPlanService handles billing plan operations
type BillingPlanService struct {
	planRepo  billing.BillingPlanRepository
	orderRepo billing.OrderRepository
}

// NewBillingPlanService creates a new BillingPlanService
func NewBillingPlanService(planRepo billing.BillingPlanRepository, orderRepo billing.OrderRepository) *BillingPlanService {
	return &BillingPlanService{
		planRepo:  planRepo,
		orderRepo: orderRepo,
	}
}

// PlanItemInput is one installment in a plan creation request
type PlanItemInput struct {
	DueDate     time.Time       `json:"due_date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// CreateBillingPlanRequest is the input for creating a billing plan
type CreateBillingPlanRequest struct {
	OrderID  uuid.UUID       `json:"order_id" binding:"required"`
	Interval string          `json:"interval" binding:"required"`
	Items    []PlanItemInput `json:"items"`
}

// AddPlanItemRequest is the input for appending an installment
type AddPlanItemRequest struct {
	DueDate     time.Time       `json:"due_date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// PlanItemResponse represents a billing plan item in API responses
type PlanItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	DueDate     time.Time       `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
}

// BillingPlanResponse represents a billing plan in API responses
type BillingPlanResponse struct {
	ID         uuid.UUID          `json:"id"`
	OrderID    uuid.UUID          `json:"order_id"`
	Interval   string             `json:"interval"`
	Items      []PlanItemResponse `json:"items"`
	OpenAmount decimal.Decimal    `json:"open_amount"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// ToBillingPlanResponse converts a domain billing plan to a response
func ToBillingPlanResponse(p *billing.BillingPlan) BillingPlanResponse {
	items := make([]PlanItemResponse, 0, len(p.Items))
	for idx := range p.Items {
		item := &p.Items[idx]
		items = append(items, PlanItemResponse{
			ID:          item.ID,
			DueDate:     item.DueDate,
			Amount:      item.Amount,
			Description: item.Description,
			Status:      string(item.Status),
			InvoiceID:   item.InvoiceID,
		})
	}
	return BillingPlanResponse{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Interval:   string(p.Interval),
		Items:      items,
		OpenAmount: p.OpenAmount(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// Create creates the billing plan for an order. An order has at most one plan.
func (s *BillingPlanService) Create(ctx context.Context, req CreateBillingPlanRequest) (*BillingPlanResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.planRepo.FindByOrder(ctx, order.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Order already has a billing plan")
	}

	plan, err := billing.NewBillingPlan(order.ID, billing.BillingInterval(req.Interval))
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if _, err := plan.AddItem(item.DueDate, valueobject.NewMoneyEUR(item.Amount), item.Description); err != nil {
			return nil, err
		}
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	response := ToBillingPlanResponse(plan)
	return &response, nil
}

// GetByOrder retrieves the billing plan of an order
func (s *BillingPlanService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*BillingPlanResponse, error) {
	plan, err := s.planRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToBillingPlanResponse(plan)
	return &response, nil
}

// AddItem appends an installment to the plan of an order
func (s *BillingPlanService) AddItem(ctx context.Context, orderID uuid.UUID, req AddPlanItemRequest) (*BillingPlanResponse, error) {
	plan, err := s.planRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := plan.AddItem(req.DueDate, valueobject.NewMoneyEUR(req.Amount), req.Description); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	response := ToBillingPlanResponse(plan)
	return &response, nil
}
