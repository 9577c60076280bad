package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPlan(t *testing.T) *BillingPlan {
	plan, err := NewBillingPlan(uuid.New(), BillingIntervalMonthly)
	require.NoError(t, err)
	return plan
}

func TestNewBillingPlan(t *testing.T) {
	plan := createTestPlan(t)
	assert.Equal(t, BillingIntervalMonthly, plan.Interval)
	assert.Empty(t, plan.Items)

	_, err := NewBillingPlan(uuid.Nil, BillingIntervalMonthly)
	assert.Error(t, err)

	_, err = NewBillingPlan(uuid.New(), BillingInterval("weekly"))
	assert.Error(t, err)
}

func TestBillingPlan_AddItem(t *testing.T) {
	plan := createTestPlan(t)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	item, err := plan.AddItem(due, valueobject.NewMoneyEURFromFloat(2500), "First installment")
	require.NoError(t, err)
	assert.Equal(t, PlanItemStatusPlanned, item.Status)
	assert.False(t, item.Invoiced)
	assert.Nil(t, item.InvoiceID)

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := plan.AddItem(due, valueobject.ZeroEUR(), "")
		assert.Error(t, err)
		_, err = plan.AddItem(due, valueobject.NewMoneyEURFromFloat(-10), "")
		assert.Error(t, err)
	})
}

func TestBillingPlanItem_MarkInvoiced(t *testing.T) {
	plan := createTestPlan(t)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	item, err := plan.AddItem(due, valueobject.NewMoneyEURFromFloat(2500), "")
	require.NoError(t, err)

	invoiceID := uuid.New()
	require.NoError(t, item.MarkInvoiced(invoiceID))
	assert.True(t, item.Invoiced)
	assert.Equal(t, PlanItemStatusInvoiced, item.Status)
	require.NotNil(t, item.InvoiceID)
	assert.Equal(t, invoiceID, *item.InvoiceID)

	t.Run("item is linked to at most one invoice ever", func(t *testing.T) {
		err := item.MarkInvoiced(uuid.New())
		require.Error(t, err)
		assert.Equal(t, invoiceID, *item.InvoiceID)
	})

	t.Run("nil invoice rejected", func(t *testing.T) {
		fresh, err := plan.AddItem(due, valueobject.NewMoneyEURFromFloat(100), "")
		require.NoError(t, err)
		assert.Error(t, fresh.MarkInvoiced(uuid.Nil))
	})
}

func TestBillingPlanItem_LineDescription(t *testing.T) {
	plan := createTestPlan(t)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	withDesc, err := plan.AddItem(due, valueobject.NewMoneyEURFromFloat(100), "Milestone 1")
	require.NoError(t, err)
	assert.Equal(t, "Milestone 1", withDesc.LineDescription())

	blank, err := plan.AddItem(due, valueobject.NewMoneyEURFromFloat(100), "")
	require.NoError(t, err)
	assert.Equal(t, "Rate 2026-05-01", blank.LineDescription())
}

func TestBillingPlan_OpenItems(t *testing.T) {
	plan := createTestPlan(t)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	first, err := plan.AddItem(due, valueobject.NewMoneyEURFromFloat(300), "")
	require.NoError(t, err)
	_, err = plan.AddItem(due.AddDate(0, 1, 0), valueobject.NewMoneyEURFromFloat(200), "")
	require.NoError(t, err)

	require.NoError(t, first.MarkInvoiced(uuid.New()))

	open := plan.OpenItems()
	require.Len(t, open, 1)
	assert.True(t, plan.OpenAmount().Equal(decimal.NewFromInt(200)))
}
