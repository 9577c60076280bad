// Package budget provides application services for budget plans and actual costs.
package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/budget"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BudgetService handles budget plan submission and actual cost recording
type BudgetService struct {
	planRepo       budget.BudgetPlanRepository
	costRepo       budget.ActualCostRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	planRepo budget.BudgetPlanRepository,
	costRepo budget.ActualCostRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *BudgetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetService{
		planRepo:       planRepo,
		costRepo:       costRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// PlanMonthInput is one month of a budget plan submission
type PlanMonthInput struct {
	Year           int             `json:"year" binding:"required"`
	Month          int             `json:"month" binding:"required"`
	Personnel      decimal.Decimal `json:"personnel"`
	External       decimal.Decimal `json:"external"`
	Infrastructure decimal.Decimal `json:"infrastructure"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// SubmitBudgetPlanRequest is the input for submitting a new plan version
type SubmitBudgetPlanRequest struct {
	OrderID uuid.UUID        `json:"order_id" binding:"required"`
	Comment string           `json:"comment"`
	Months  []PlanMonthInput `json:"months" binding:"required"`
}

// RecordActualCostRequest is the input for recording an actual cost
type RecordActualCostRequest struct {
	OrderID  uuid.UUID       `json:"order_id" binding:"required"`
	Date     time.Time       `json:"date" binding:"required"`
	CostType string          `json:"cost_type" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Supplier string          `json:"supplier"`
	Year     *int            `json:"year"`
	Month    *int            `json:"month"`
}

// BudgetPlanMonthResponse represents one plan month in API responses
type BudgetPlanMonthResponse struct {
	Month          string          `json:"month"`
	Personnel      decimal.Decimal `json:"personnel"`
	External       decimal.Decimal `json:"external"`
	Infrastructure decimal.Decimal `json:"infrastructure"`
	Revenue        decimal.Decimal `json:"revenue"`
	PlannedCost    decimal.Decimal `json:"planned_cost"`
}

// BudgetPlanResponse represents a budget plan version in API responses
type BudgetPlanResponse struct {
	ID           uuid.UUID                 `json:"id"`
	OrderID      uuid.UUID                 `json:"order_id"`
	Version      int                       `json:"version"`
	Comment      string                    `json:"comment,omitempty"`
	Months       []BudgetPlanMonthResponse `json:"months"`
	PlannedCost  decimal.Decimal           `json:"planned_cost"`
	PlannedSales decimal.Decimal           `json:"planned_revenue"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// ActualCostResponse represents an actual cost in API responses
type ActualCostResponse struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Date      time.Time       `json:"date"`
	CostType  string          `json:"cost_type"`
	Amount    decimal.Decimal `json:"amount"`
	Supplier  string          `json:"supplier,omitempty"`
	Month     string          `json:"month"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToBudgetPlanResponse converts a domain budget plan to a response
func ToBudgetPlanResponse(p *budget.BudgetPlan) BudgetPlanResponse {
	months := make([]BudgetPlanMonthResponse, 0, len(p.Months))
	for idx := range p.Months {
		m := &p.Months[idx]
		months = append(months, BudgetPlanMonthResponse{
			Month:          m.Month.String(),
			Personnel:      m.PlannedPersonnel,
			External:       m.PlannedExternal,
			Infrastructure: m.PlannedInfrastructure,
			Revenue:        m.PlannedRevenue,
			PlannedCost:    m.PlannedCost(),
		})
	}
	return BudgetPlanResponse{
		ID:           p.ID,
		OrderID:      p.OrderID,
		Version:      p.Version,
		Comment:      p.Comment,
		Months:       months,
		PlannedCost:  p.PlannedCostTotal(),
		PlannedSales: p.PlannedRevenueTotal(),
		CreatedAt:    p.CreatedAt,
	}
}

// ToActualCostResponse converts a domain actual cost to a response
func ToActualCostResponse(c *budget.ActualCost) ActualCostResponse {
	return ActualCostResponse{
		ID:        c.ID,
		OrderID:   c.OrderID,
		Date:      c.Date,
		CostType:  string(c.CostType),
		Amount:    c.Amount,
		Supplier:  c.Supplier,
		Month:     c.Month.String(),
		Paid:      c.Paid,
		CreatedAt: c.CreatedAt,
	}
}

// SubmitPlan submits a new budget plan version for an order. Earlier
// versions stay untouched; the new version number is assigned here.
func (s *BudgetService) SubmitPlan(ctx context.Context, req SubmitBudgetPlanRequest) (*BudgetPlanResponse, error) {
	if len(req.Months) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Budget plan needs at least one month")
	}

	version, err := s.planRepo.NextVersion(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	plan, err := budget.NewBudgetPlan(req.OrderID, version, req.Comment)
	if err != nil {
		return nil, err
	}
	for _, m := range req.Months {
		ym, err := valueobject.NewYearMonth(m.Year, m.Month)
		if err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
		}
		if err := plan.AddMonth(ym, m.Personnel, m.External, m.Infrastructure, m.Revenue); err != nil {
			return nil, err
		}
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, plan.GetDomainEvents())
	plan.ClearDomainEvents()

	response := ToBudgetPlanResponse(plan)
	return &response, nil
}

// GetLatestPlan returns the latest submitted plan version for an order
func (s *BudgetService) GetLatestPlan(ctx context.Context, orderID uuid.UUID) (*BudgetPlanResponse, error) {
	plan, err := s.planRepo.FindLatestByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToBudgetPlanResponse(plan)
	return &response, nil
}

// ListPlanVersions returns all submitted plan versions for an order
func (s *BudgetService) ListPlanVersions(ctx context.Context, orderID uuid.UUID) ([]BudgetPlanResponse, error) {
	plans, err := s.planRepo.FindAllByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]BudgetPlanResponse, 0, len(plans))
	for idx := range plans {
		responses = append(responses, ToBudgetPlanResponse(&plans[idx]))
	}
	return responses, nil
}

// RecordCost records an actual cost against an order
func (s *BudgetService) RecordCost(ctx context.Context, req RecordActualCostRequest) (*ActualCostResponse, error) {
	var month *valueobject.YearMonth
	if req.Year != nil && req.Month != nil {
		ym, err := valueobject.NewYearMonth(*req.Year, *req.Month)
		if err != nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
		}
		month = &ym
	}

	cost, err := budget.NewActualCost(
		req.OrderID,
		req.Date,
		budget.CostType(req.CostType),
		valueobject.NewMoneyEUR(req.Amount),
		req.Supplier,
		month,
	)
	if err != nil {
		return nil, err
	}

	if err := s.costRepo.Create(ctx, cost); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, []shared.DomainEvent{budget.NewActualCostRecordedEvent(cost)})

	response := ToActualCostResponse(cost)
	return &response, nil
}

// ListCosts returns all recorded costs for an order
func (s *BudgetService) ListCosts(ctx context.Context, orderID uuid.UUID) ([]ActualCostResponse, error) {
	costs, err := s.costRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]ActualCostResponse, 0, len(costs))
	for idx := range costs {
		responses = append(responses, ToActualCostResponse(&costs[idx]))
	}
	return responses, nil
}

// MarkCostPaid flags a cost entry as settled
func (s *BudgetService) MarkCostPaid(ctx context.Context, id uuid.UUID) (*ActualCostResponse, error) {
	cost, err := s.costRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cost.MarkPaid()
	if err := s.costRepo.Save(ctx, cost); err != nil {
		return nil, err
	}
	response := ToActualCostResponse(cost)
	return &response, nil
}

func (s *BudgetService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}
