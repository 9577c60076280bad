package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/budget"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BudgetPlanModel is the persistence model for the BudgetPlan aggregate root.
// Plan versions are append-only; the unique index on (order_id, plan_version)
// rejects a duplicate submission of the same version.
type BudgetPlanModel struct {
	AggregateModel
	OrderID     uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_budget_plans_order_version,priority:1"`
	PlanVersion int                    `gorm:"not null;uniqueIndex:idx_budget_plans_order_version,priority:2"`
	Comment     string                 `gorm:"type:text"`
	Months      []BudgetPlanMonthModel `gorm:"foreignKey:BudgetPlanID;references:ID"`
}

// TableName returns the table name for GORM
func (BudgetPlanModel) TableName() string {
	return "budget_plans"
}

// ToDomain converts the persistence model to a domain BudgetPlan entity.
func (m *BudgetPlanModel) ToDomain() *budget.BudgetPlan {
	p := &budget.BudgetPlan{
		OrderID: m.OrderID,
		Version: m.PlanVersion,
		Comment: m.Comment,
		Months:  make([]budget.BudgetPlanMonth, len(m.Months)),
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	for i, month := range m.Months {
		p.Months[i] = month.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain BudgetPlan entity.
func (m *BudgetPlanModel) FromDomain(p *budget.BudgetPlan) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.OrderID = p.OrderID
	m.PlanVersion = p.Version
	m.Comment = p.Comment
	m.Months = make([]BudgetPlanMonthModel, len(p.Months))
	for i, month := range p.Months {
		m.Months[i] = BudgetPlanMonthModelFromDomain(p.ID, &month)
	}
}

// BudgetPlanModelFromDomain creates a new persistence model from a domain BudgetPlan.
func BudgetPlanModelFromDomain(p *budget.BudgetPlan) *BudgetPlanModel {
	m := &BudgetPlanModel{}
	m.FromDomain(p)
	return m
}

// BudgetPlanMonthModel is the persistence model for one planned month.
type BudgetPlanMonthModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primary_key"`
	BudgetPlanID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budget_plan_months,priority:1"`
	Year                  int             `gorm:"not null;uniqueIndex:idx_budget_plan_months,priority:2"`
	Month                 int             `gorm:"not null;uniqueIndex:idx_budget_plan_months,priority:3"`
	PlannedPersonnel      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PlannedExternal       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PlannedInfrastructure decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PlannedRevenue        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (BudgetPlanMonthModel) TableName() string {
	return "budget_plan_months"
}

// ToDomain converts the persistence model to a domain BudgetPlanMonth value.
func (m *BudgetPlanMonthModel) ToDomain() budget.BudgetPlanMonth {
	return budget.BudgetPlanMonth{
		Month:                 valueobject.YearMonth{Year: m.Year, Month: m.Month},
		PlannedPersonnel:      m.PlannedPersonnel,
		PlannedExternal:       m.PlannedExternal,
		PlannedInfrastructure: m.PlannedInfrastructure,
		PlannedRevenue:        m.PlannedRevenue,
	}
}

// BudgetPlanMonthModelFromDomain creates a new persistence model from a domain BudgetPlanMonth.
func BudgetPlanMonthModelFromDomain(planID uuid.UUID, month *budget.BudgetPlanMonth) BudgetPlanMonthModel {
	return BudgetPlanMonthModel{
		ID:                    uuid.New(),
		BudgetPlanID:          planID,
		Year:                  month.Month.Year,
		Month:                 month.Month.Month,
		PlannedPersonnel:      month.PlannedPersonnel,
		PlannedExternal:       month.PlannedExternal,
		PlannedInfrastructure: month.PlannedInfrastructure,
		PlannedRevenue:        month.PlannedRevenue,
	}
}

// ActualCostModel is the persistence model for the ActualCost aggregate root.
type ActualCostModel struct {
	AggregateModel
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date       time.Time       `gorm:"not null;index"`
	CostType   budget.CostType `gorm:"type:varchar(20);not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Supplier   string          `gorm:"type:varchar(200)"`
	MonthYear  int             `gorm:"not null;index:idx_actual_costs_month"`
	MonthMonth int             `gorm:"not null;index:idx_actual_costs_month"`
	Paid       bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ActualCostModel) TableName() string {
	return "actual_costs"
}

// ToDomain converts the persistence model to a domain ActualCost entity.
func (m *ActualCostModel) ToDomain() *budget.ActualCost {
	c := &budget.ActualCost{
		OrderID:  m.OrderID,
		Date:     m.Date,
		CostType: m.CostType,
		Amount:   m.Amount,
		Supplier: m.Supplier,
		Month:    valueobject.YearMonth{Year: m.MonthYear, Month: m.MonthMonth},
		Paid:     m.Paid,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain ActualCost entity.
func (m *ActualCostModel) FromDomain(c *budget.ActualCost) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.OrderID = c.OrderID
	m.Date = c.Date
	m.CostType = c.CostType
	m.Amount = c.Amount
	m.Supplier = c.Supplier
	m.MonthYear = c.Month.Year
	m.MonthMonth = c.Month.Month
	m.Paid = c.Paid
}

// ActualCostModelFromDomain creates a new persistence model from a domain ActualCost.
func ActualCostModelFromDomain(c *budget.ActualCost) *ActualCostModel {
	m := &ActualCostModel{}
	m.FromDomain(c)
	return m
}
