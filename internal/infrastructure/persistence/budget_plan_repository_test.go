package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/budget"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/kontor/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBudgetTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.BudgetPlanModel{},
		&models.BudgetPlanMonthModel{},
		&models.ActualCostModel{},
	))
	return db
}

func newTestBudgetPlan(t *testing.T, orderID uuid.UUID, version int) *budget.BudgetPlan {
	t.Helper()
	plan, err := budget.NewBudgetPlan(orderID, version, "initial planning")
	require.NoError(t, err)

	month := valueobject.YearMonth{Year: 2026, Month: 3}
	require.NoError(t, plan.AddMonth(month,
		decimal.NewFromInt(500), decimal.NewFromInt(200), decimal.NewFromInt(100),
		decimal.NewFromInt(1200)))
	require.NoError(t, plan.AddMonth(month.Next(),
		decimal.NewFromInt(500), decimal.Zero, decimal.NewFromInt(100),
		decimal.NewFromInt(1200)))
	return plan
}

func TestGormBudgetPlanRepository(t *testing.T) {
	db := setupBudgetTestDB(t)
	repo := NewGormBudgetPlanRepository(db)
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("NextVersion starts at 1", func(t *testing.T) {
		version, err := repo.NextVersion(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, 1, version)
	})

	t.Run("Create persists plan with months", func(t *testing.T) {
		plan := newTestBudgetPlan(t, orderID, 1)
		require.NoError(t, repo.Create(ctx, plan))

		found, err := repo.FindByID(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, found.Version)
		require.Len(t, found.Months, 2)
		assert.Equal(t, valueobject.YearMonth{Year: 2026, Month: 3}, found.Months[0].Month)
		assert.True(t, found.PlannedCostTotal().Equal(decimal.NewFromInt(1400)))
	})

	t.Run("duplicate version is rejected", func(t *testing.T) {
		plan := newTestBudgetPlan(t, orderID, 1)
		err := repo.Create(ctx, plan)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("NextVersion advances after submission", func(t *testing.T) {
		version, err := repo.NextVersion(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, 2, version)
	})

	t.Run("FindLatestByOrder returns the highest version", func(t *testing.T) {
		second := newTestBudgetPlan(t, orderID, 2)
		require.NoError(t, repo.Create(ctx, second))

		latest, err := repo.FindLatestByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Version)
	})

	t.Run("FindLatestByOrder returns ErrNotFound without plans", func(t *testing.T) {
		_, err := repo.FindLatestByOrder(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindAllByOrder lists versions oldest first", func(t *testing.T) {
		plans, err := repo.FindAllByOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, 1, plans[0].Version)
		assert.Equal(t, 2, plans[1].Version)
	})
}

func TestGormActualCostRepository(t *testing.T) {
	db := setupBudgetTestDB(t)
	repo := NewGormActualCostRepository(db)
	ctx := context.Background()
	orderID := uuid.New()

	march := valueobject.YearMonth{Year: 2026, Month: 3}
	april := march.Next()

	newCost := func(costType budget.CostType, amount float64, month valueobject.YearMonth) *budget.ActualCost {
		date := time.Date(month.Year, time.Month(month.Month), 15, 0, 0, 0, 0, time.UTC)
		cost, err := budget.NewActualCost(orderID, date, costType,
			valueobject.NewMoneyEURFromFloat(amount), "Supplier GmbH", nil)
		require.NoError(t, err)
		return cost
	}

	require.NoError(t, repo.Create(ctx, newCost(budget.CostTypePersonnel, 450, march)))
	require.NoError(t, repo.Create(ctx, newCost(budget.CostTypeExternal, 200, march)))
	require.NoError(t, repo.Create(ctx, newCost(budget.CostTypeInfrastructure, 120, april)))

	t.Run("FindByOrder returns all entries", func(t *testing.T) {
		costs, err := repo.FindByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Len(t, costs, 3)
	})

	t.Run("FindByOrderAndMonth filters by assignment month", func(t *testing.T) {
		costs, err := repo.FindByOrderAndMonth(ctx, orderID, march)
		require.NoError(t, err)
		assert.Len(t, costs, 2)

		costs, err = repo.FindByOrderAndMonth(ctx, orderID, april)
		require.NoError(t, err)
		require.Len(t, costs, 1)
		assert.Equal(t, budget.CostTypeInfrastructure, costs[0].CostType)
	})

	t.Run("Save persists the paid flag", func(t *testing.T) {
		costs, err := repo.FindByOrderAndMonth(ctx, orderID, april)
		require.NoError(t, err)
		require.Len(t, costs, 1)

		costs[0].MarkPaid()
		require.NoError(t, repo.Save(ctx, &costs[0]))

		found, err := repo.FindByID(ctx, costs[0].ID)
		require.NoError(t, err)
		assert.True(t, found.Paid)
	})
}
