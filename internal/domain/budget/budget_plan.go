// Package budget contains budget plans, recorded actual costs, and the
// read-only reconciliation of planned versus actual figures per order.
package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BudgetPlanMonth holds the planned figures for one calendar month
type BudgetPlanMonth struct {
	Month                 valueobject.YearMonth `json:"month"`
	PlannedPersonnel      decimal.Decimal       `json:"planned_personnel"`
	PlannedExternal       decimal.Decimal       `json:"planned_external"`
	PlannedInfrastructure decimal.Decimal       `json:"planned_infrastructure"`
	PlannedRevenue        decimal.Decimal       `json:"planned_revenue"`
}

// PlannedCost returns the planned cost of the month: personnel plus
// external plus infrastructure. Revenue is not a cost.
func (m *BudgetPlanMonth) PlannedCost() decimal.Decimal {
	return m.PlannedPersonnel.Add(m.PlannedExternal).Add(m.PlannedInfrastructure)
}

// BudgetPlan is a versioned cost plan for an order. Versions are
// append-only: a plan is never mutated in place, only superseded by a
// higher version.
type BudgetPlan struct {
	shared.BaseAggregateRoot
	OrderID uuid.UUID
	Version int
	Comment string
	Months  []BudgetPlanMonth
}

// NewBudgetPlan creates a new budget plan version for an order
func NewBudgetPlan(orderID uuid.UUID, version int, comment string) (*BudgetPlan, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if version < 1 {
		return nil, shared.NewDomainError("INVALID_VERSION", "Budget plan version must be at least 1")
	}

	p := &BudgetPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Version:           version,
		Comment:           comment,
		Months:            []BudgetPlanMonth{},
	}

	p.AddDomainEvent(NewBudgetPlanSubmittedEvent(p))

	return p, nil
}

// AddMonth appends planned figures for a month. Each month appears once.
func (p *BudgetPlan) AddMonth(month valueobject.YearMonth, personnel, external, infrastructure, revenue decimal.Decimal) error {
	for idx := range p.Months {
		if p.Months[idx].Month == month {
			return shared.NewDomainError("DUPLICATE_MONTH", "Budget plan already contains this month")
		}
	}
	if personnel.IsNegative() || external.IsNegative() || infrastructure.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Planned cost amounts cannot be negative")
	}

	p.Months = append(p.Months, BudgetPlanMonth{
		Month:                 month,
		PlannedPersonnel:      personnel,
		PlannedExternal:       external,
		PlannedInfrastructure: infrastructure,
		PlannedRevenue:        revenue,
	})
	p.UpdatedAt = time.Now()

	return nil
}

// PlannedCostTotal sums the planned cost over all months
func (p *BudgetPlan) PlannedCostTotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range p.Months {
		total = total.Add(p.Months[idx].PlannedCost())
	}
	return total
}

// PlannedRevenueTotal sums the planned revenue over all months
func (p *BudgetPlan) PlannedRevenueTotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range p.Months {
		total = total.Add(p.Months[idx].PlannedRevenue)
	}
	return total
}
