package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CostType categorizes an actual cost entry
type CostType string

const (
	CostTypePersonnel      CostType = "personnel"
	CostTypeExternal       CostType = "external"
	CostTypeInfrastructure CostType = "infrastructure"
)

// IsValid checks if the cost type is valid
func (c CostType) IsValid() bool {
	switch c {
	case CostTypePersonnel, CostTypeExternal, CostTypeInfrastructure:
		return true
	}
	return false
}

// ActualCost is a single recorded cost against an order, assigned to a
// calendar month for reconciliation against the budget plan.
type ActualCost struct {
	shared.BaseAggregateRoot
	OrderID  uuid.UUID
	Date     time.Time
	CostType CostType
	Amount   decimal.Decimal
	Supplier string
	Month    valueobject.YearMonth
	Paid     bool
}

// NewActualCost records a cost. When no month is assigned explicitly the
// cost falls into the month of its date.
func NewActualCost(orderID uuid.UUID, date time.Time, costType CostType, amount valueobject.Money, supplier string, month *valueobject.YearMonth) (*ActualCost, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Cost date is required")
	}
	if !costType.IsValid() {
		return nil, shared.NewDomainError("INVALID_COST_TYPE", "Cost type is not valid")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cost amount must be positive")
	}

	assigned := valueobject.YearMonthOf(date)
	if month != nil {
		assigned = *month
	}

	return &ActualCost{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Date:              date,
		CostType:          costType,
		Amount:            amount.Amount(),
		Supplier:          supplier,
		Month:             assigned,
	}, nil
}

// MarkPaid flags the cost entry as settled with the supplier
func (c *ActualCost) MarkPaid() {
	c.Paid = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
