package budget

import (
	"context"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
)

// BudgetPlanRepository defines persistence operations for budget plans.
// Plan versions are append-only; there is no update or delete.
type BudgetPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BudgetPlan, error)
	// FindLatestByOrder returns the highest submitted version for the order,
	// or ErrNotFound when no plan exists yet.
	FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*BudgetPlan, error)
	FindAllByOrder(ctx context.Context, orderID uuid.UUID) ([]BudgetPlan, error)
	Create(ctx context.Context, plan *BudgetPlan) error
	// NextVersion returns the version number the next submission should use
	NextVersion(ctx context.Context, orderID uuid.UUID) (int, error)
}

// ActualCostRepository defines persistence operations for actual costs
type ActualCostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ActualCost, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ActualCost, error)
	FindByOrderAndMonth(ctx context.Context, orderID uuid.UUID, month valueobject.YearMonth) ([]ActualCost, error)
	Create(ctx context.Context, cost *ActualCost) error
	Save(ctx context.Context, cost *ActualCost) error
}
