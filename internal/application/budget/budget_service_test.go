package budget

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/budget"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBudgetPlanRepository is a mock implementation of budget.BudgetPlanRepository
type MockBudgetPlanRepository struct {
	mock.Mock
}

func (m *MockBudgetPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.BudgetPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.BudgetPlan), args.Error(1)
}

func (m *MockBudgetPlanRepository) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*budget.BudgetPlan, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.BudgetPlan), args.Error(1)
}

func (m *MockBudgetPlanRepository) FindAllByOrder(ctx context.Context, orderID uuid.UUID) ([]budget.BudgetPlan, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]budget.BudgetPlan), args.Error(1)
}

func (m *MockBudgetPlanRepository) Create(ctx context.Context, plan *budget.BudgetPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockBudgetPlanRepository) NextVersion(ctx context.Context, orderID uuid.UUID) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

// MockActualCostRepository is a mock implementation of budget.ActualCostRepository
type MockActualCostRepository struct {
	mock.Mock
}

func (m *MockActualCostRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.ActualCost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.ActualCost), args.Error(1)
}

func (m *MockActualCostRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]budget.ActualCost, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]budget.ActualCost), args.Error(1)
}

func (m *MockActualCostRepository) FindByOrderAndMonth(ctx context.Context, orderID uuid.UUID, month valueobject.YearMonth) ([]budget.ActualCost, error) {
	args := m.Called(ctx, orderID, month)
	return args.Get(0).([]budget.ActualCost), args.Error(1)
}

func (m *MockActualCostRepository) Create(ctx context.Context, cost *budget.ActualCost) error {
	args := m.Called(ctx, cost)
	return args.Error(0)
}

func (m *MockActualCostRepository) Save(ctx context.Context, cost *budget.ActualCost) error {
	args := m.Called(ctx, cost)
	return args.Error(0)
}

func TestBudgetService_SubmitPlan(t *testing.T) {
	t.Run("assigns the next version and stores all months", func(t *testing.T) {
		planRepo := new(MockBudgetPlanRepository)
		svc := NewBudgetService(planRepo, nil, nil, nil)

		orderID := uuid.New()
		planRepo.On("NextVersion", mock.Anything, orderID).Return(3, nil)
		planRepo.On("Create", mock.Anything, mock.AnythingOfType("*budget.BudgetPlan")).Return(nil)

		resp, err := svc.SubmitPlan(context.Background(), SubmitBudgetPlanRequest{
			OrderID: orderID,
			Comment: "scope change",
			Months: []PlanMonthInput{
				{Year: 2026, Month: 3, Personnel: decimal.NewFromInt(500), External: decimal.NewFromInt(200), Infrastructure: decimal.NewFromInt(100)},
				{Year: 2026, Month: 4, Personnel: decimal.NewFromInt(400)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Version)
		assert.Len(t, resp.Months, 2)
		assert.True(t, resp.PlannedCost.Equal(decimal.NewFromInt(1200)))
		planRepo.AssertExpectations(t)
	})

	t.Run("rejects a plan without months", func(t *testing.T) {
		planRepo := new(MockBudgetPlanRepository)
		svc := NewBudgetService(planRepo, nil, nil, nil)

		_, err := svc.SubmitPlan(context.Background(), SubmitBudgetPlanRequest{OrderID: uuid.New()})
		require.Error(t, err)
		planRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects an invalid month", func(t *testing.T) {
		planRepo := new(MockBudgetPlanRepository)
		svc := NewBudgetService(planRepo, nil, nil, nil)

		planRepo.On("NextVersion", mock.Anything, mock.Anything).Return(1, nil)

		_, err := svc.SubmitPlan(context.Background(), SubmitBudgetPlanRequest{
			OrderID: uuid.New(),
			Months:  []PlanMonthInput{{Year: 2026, Month: 13}},
		})
		require.Error(t, err)
		planRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBudgetService_RecordCost(t *testing.T) {
	t.Run("records a cost with explicit month assignment", func(t *testing.T) {
		costRepo := new(MockActualCostRepository)
		svc := NewBudgetService(nil, costRepo, nil, nil)

		costRepo.On("Create", mock.Anything, mock.AnythingOfType("*budget.ActualCost")).Return(nil)

		year, month := 2026, 4
		resp, err := svc.RecordCost(context.Background(), RecordActualCostRequest{
			OrderID:  uuid.New(),
			Date:     time.Date(2026, 3, 28, 0, 0, 0, 0, time.UTC),
			CostType: "external",
			Amount:   decimal.NewFromInt(650),
			Supplier: "Druckerei Nord",
			Year:     &year,
			Month:    &month,
		})
		require.NoError(t, err)
		assert.Equal(t, "2026-04", resp.Month)
		assert.Equal(t, "external", resp.CostType)
		costRepo.AssertExpectations(t)
	})

	t.Run("invalid cost type fails", func(t *testing.T) {
		costRepo := new(MockActualCostRepository)
		svc := NewBudgetService(nil, costRepo, nil, nil)

		_, err := svc.RecordCost(context.Background(), RecordActualCostRequest{
			OrderID:  uuid.New(),
			Date:     time.Now(),
			CostType: "entertainment",
			Amount:   decimal.NewFromInt(10),
		})
		require.Error(t, err)
		costRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBudgetService_MarkCostPaid(t *testing.T) {
	costRepo := new(MockActualCostRepository)
	svc := NewBudgetService(nil, costRepo, nil, nil)

	cost, err := budget.NewActualCost(uuid.New(), time.Now(), budget.CostTypeExternal,
		valueobject.NewMoneyEURFromFloat(100), "", nil)
	require.NoError(t, err)

	costRepo.On("FindByID", mock.Anything, cost.ID).Return(cost, nil)
	costRepo.On("Save", mock.Anything, cost).Return(nil)

	resp, err := svc.MarkCostPaid(context.Background(), cost.ID)
	require.NoError(t, err)
	assert.True(t, resp.Paid)
	costRepo.AssertExpectations(t)
}
