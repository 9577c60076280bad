package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/kontor/backend/internal/domain/partner"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockOrderRepository is a mock implementation of billing.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*billing.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindByOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]billing.Order, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).([]billing.Order), args.Error(1)
}

func (m *MockOrderRepository) CreateWithNumber(ctx context.Context, order *billing.Order, customerCode string) error {
	args := m.Called(ctx, order, customerCode)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockOrganizationRepository is a mock implementation of partner.OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Organization, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Organization), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *partner.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
	Events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.Events = append(m.Events, events...)
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// Tests
// =============================================================================

func testOrganization(t *testing.T) *partner.Organization {
	t.Helper()
	org, err := partner.NewOrganization("Neubau AG", partner.OrganizationTypeCustomer)
	require.NoError(t, err)
	return org
}

func TestOrderService_Create(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates order with the organization's customer code", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		orgRepo := new(MockOrganizationRepository)
		publisher := new(MockEventPublisher)
		svc := NewOrderService(orderRepo, orgRepo, publisher, nil)

		org := testOrganization(t)
		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		orderRepo.On("CreateWithNumber", mock.Anything, mock.AnythingOfType("*billing.Order"), "NEU").
			Run(func(args mock.Arguments) {
				order := args.Get(1).(*billing.Order)
				require.NoError(t, order.AssignNumber("2026NEU01"))
			}).
			Return(nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Create(context.Background(), CreateOrderRequest{
			OrganizationID: org.ID,
			TotalValue:     decimal.NewFromInt(12000),
			StartDate:      &start,
		})
		require.NoError(t, err)
		assert.Equal(t, "2026NEU01", resp.OrderNumber)
		assert.Equal(t, "Neubau AG", resp.OrganizationName)
		assert.Equal(t, "draft", resp.Status)
		orderRepo.AssertExpectations(t)
	})

	t.Run("retries on allocation conflict with a fresh aggregate", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		orgRepo := new(MockOrganizationRepository)
		svc := NewOrderService(orderRepo, orgRepo, nil, nil)

		org := testOrganization(t)
		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		orderRepo.On("CreateWithNumber", mock.Anything, mock.Anything, "NEU").
			Return(shared.ErrAllocationConflict).Twice()
		orderRepo.On("CreateWithNumber", mock.Anything, mock.Anything, "NEU").
			Run(func(args mock.Arguments) {
				order := args.Get(1).(*billing.Order)
				require.NoError(t, order.AssignNumber("2026NEU02"))
			}).
			Return(nil).Once()

		resp, err := svc.Create(context.Background(), CreateOrderRequest{
			OrganizationID: org.ID,
			TotalValue:     decimal.NewFromInt(500),
		})
		require.NoError(t, err)
		assert.Equal(t, "2026NEU02", resp.OrderNumber)
		orderRepo.AssertNumberOfCalls(t, "CreateWithNumber", 3)
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		orgRepo := new(MockOrganizationRepository)
		svc := NewOrderService(orderRepo, orgRepo, nil, nil)

		org := testOrganization(t)
		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		orderRepo.On("CreateWithNumber", mock.Anything, mock.Anything, "NEU").
			Return(shared.ErrAllocationConflict)

		_, err := svc.Create(context.Background(), CreateOrderRequest{
			OrganizationID: org.ID,
			TotalValue:     decimal.NewFromInt(500),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAllocationConflict)
		orderRepo.AssertNumberOfCalls(t, "CreateWithNumber", 3)
	})

	t.Run("sequence overflow is not retried", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		orgRepo := new(MockOrganizationRepository)
		svc := NewOrderService(orderRepo, orgRepo, nil, nil)

		org := testOrganization(t)
		orgRepo.On("FindByID", mock.Anything, org.ID).Return(org, nil)
		orderRepo.On("CreateWithNumber", mock.Anything, mock.Anything, "NEU").
			Return(shared.ErrSequenceOverflow).Once()

		_, err := svc.Create(context.Background(), CreateOrderRequest{
			OrganizationID: org.ID,
			TotalValue:     decimal.NewFromInt(500),
		})
		assert.ErrorIs(t, err, shared.ErrSequenceOverflow)
		orderRepo.AssertNumberOfCalls(t, "CreateWithNumber", 1)
	})

	t.Run("unknown organization fails", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		orgRepo := new(MockOrganizationRepository)
		svc := NewOrderService(orderRepo, orgRepo, nil, nil)

		id := uuid.New()
		orgRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(context.Background(), CreateOrderRequest{OrganizationID: id})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_Lifecycle(t *testing.T) {
	newNumberedOrder := func(t *testing.T) *billing.Order {
		org := testOrganization(t)
		order, err := billing.NewOrder(org.ID, org.Name, valueobject.NewMoneyEURFromFloat(1000), nil, nil, 30)
		require.NoError(t, err)
		require.NoError(t, order.AssignNumber("2026NEU01"))
		order.ClearDomainEvents()
		return order
	}

	t.Run("activate persists the status change", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc := NewOrderService(orderRepo, nil, nil, nil)

		order := newNumberedOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("Save", mock.Anything, order).Return(nil)

		resp, err := svc.Activate(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, "active", resp.Status)
		orderRepo.AssertExpectations(t)
	})

	t.Run("completing a draft order fails without saving", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc := NewOrderService(orderRepo, nil, nil, nil)

		order := newNumberedOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := svc.Complete(context.Background(), order.ID)
		require.Error(t, err)
		orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
