package budget

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(t *testing.T, year, m int) valueobject.YearMonth {
	t.Helper()
	ym, err := valueobject.NewYearMonth(year, m)
	require.NoError(t, err)
	return ym
}

func cost(t *testing.T, orderID uuid.UUID, ym valueobject.YearMonth, costType CostType, amount float64) ActualCost {
	t.Helper()
	date := time.Date(ym.Year, time.Month(ym.Month), 10, 0, 0, 0, 0, time.UTC)
	c, err := NewActualCost(orderID, date, costType, valueobject.NewMoneyEURFromFloat(amount), "", &ym)
	require.NoError(t, err)
	return *c
}

func TestReconcile(t *testing.T) {
	orderID := uuid.New()

	t.Run("variance is planned minus actual", func(t *testing.T) {
		plan, err := NewBudgetPlan(orderID, 1, "")
		require.NoError(t, err)
		require.NoError(t, plan.AddMonth(month(t, 2026, 3),
			decimal.NewFromInt(500), decimal.NewFromInt(200), decimal.NewFromInt(100),
			decimal.Zero))

		costs := []ActualCost{
			cost(t, orderID, month(t, 2026, 3), CostTypePersonnel, 400),
			cost(t, orderID, month(t, 2026, 3), CostTypeExternal, 250),
		}

		rec := Reconcile(orderID, plan, costs, false)
		assert.True(t, rec.PlannedTotal.Equal(decimal.NewFromInt(800)))
		assert.True(t, rec.ActualTotal.Equal(decimal.NewFromInt(650)))
		assert.True(t, rec.Variance.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, 1, rec.PlanVersion)
	})

	t.Run("no plan means zero planned and negative variance", func(t *testing.T) {
		costs := []ActualCost{cost(t, orderID, month(t, 2026, 5), CostTypeExternal, 300)}

		rec := Reconcile(orderID, nil, costs, false)
		assert.True(t, rec.PlannedTotal.IsZero())
		assert.True(t, rec.Variance.Equal(decimal.NewFromInt(-300)))
		assert.Equal(t, 0, rec.PlanVersion)
	})

	t.Run("no costs means variance equals planned total", func(t *testing.T) {
		plan, err := NewBudgetPlan(orderID, 2, "")
		require.NoError(t, err)
		require.NoError(t, plan.AddMonth(month(t, 2026, 6),
			decimal.NewFromInt(100), decimal.Zero, decimal.Zero, decimal.Zero))

		rec := Reconcile(orderID, plan, nil, false)
		assert.True(t, rec.ActualTotal.IsZero())
		assert.True(t, rec.Variance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("month breakdown covers planned and unplanned months in order", func(t *testing.T) {
		plan, err := NewBudgetPlan(orderID, 3, "")
		require.NoError(t, err)
		require.NoError(t, plan.AddMonth(month(t, 2026, 3),
			decimal.NewFromInt(500), decimal.Zero, decimal.Zero, decimal.Zero))
		require.NoError(t, plan.AddMonth(month(t, 2026, 4),
			decimal.NewFromInt(500), decimal.Zero, decimal.Zero, decimal.Zero))

		costs := []ActualCost{
			cost(t, orderID, month(t, 2026, 4), CostTypePersonnel, 450),
			// A month the plan never covered still counts
			cost(t, orderID, month(t, 2026, 7), CostTypeExternal, 80),
		}

		rec := Reconcile(orderID, plan, costs, true)
		require.Len(t, rec.Months, 3)

		assert.Equal(t, month(t, 2026, 3), rec.Months[0].Month)
		assert.True(t, rec.Months[0].Variance.Equal(decimal.NewFromInt(500)))
		assert.True(t, rec.Months[0].HasPlanned)

		assert.Equal(t, month(t, 2026, 4), rec.Months[1].Month)
		assert.True(t, rec.Months[1].Variance.Equal(decimal.NewFromInt(50)))

		assert.Equal(t, month(t, 2026, 7), rec.Months[2].Month)
		assert.False(t, rec.Months[2].HasPlanned)
		assert.True(t, rec.Months[2].Variance.Equal(decimal.NewFromInt(-80)))

		assert.True(t, rec.Variance.Equal(decimal.NewFromInt(470)))
	})
}
