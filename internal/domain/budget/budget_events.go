package budget

import (
	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for budget plans and actual costs
const (
	EventTypeBudgetPlanSubmitted = "budget.plan.submitted"
	EventTypeActualCostRecorded  = "budget.actual_cost.recorded"
)

// BudgetPlanSubmittedEvent is published when a new plan version is submitted
type BudgetPlanSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	Version int       `json:"version"`
}

// NewBudgetPlanSubmittedEvent creates a new BudgetPlanSubmittedEvent
func NewBudgetPlanSubmittedEvent(p *BudgetPlan) *BudgetPlanSubmittedEvent {
	return &BudgetPlanSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetPlanSubmitted, "BudgetPlan", p.ID),
		OrderID:         p.OrderID,
		Version:         p.Version,
	}
}

// ActualCostRecordedEvent is published when an actual cost entry is recorded
type ActualCostRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID       `json:"order_id"`
	CostType CostType        `json:"cost_type"`
	Amount   decimal.Decimal `json:"amount"`
	Month    string          `json:"month"`
}

// NewActualCostRecordedEvent creates a new ActualCostRecordedEvent
func NewActualCostRecordedEvent(c *ActualCost) *ActualCostRecordedEvent {
	return &ActualCostRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActualCostRecorded, "ActualCost", c.ID),
		OrderID:         c.OrderID,
		CostType:        c.CostType,
		Amount:          c.Amount,
		Month:           c.Month.String(),
	}
}
