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

func createTestInvoice(t *testing.T) *Invoice {
	inv, err := NewInvoice(uuid.New(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber("INV-2026-001"))
	return inv
}

// createInvoiceWithTotal builds an invoice whose total equals the given amount
func createInvoiceWithTotal(t *testing.T, total float64) *Invoice {
	inv := createTestInvoice(t)
	_, err := inv.AddItem("Services", decimal.NewFromInt(1), decimal.NewFromFloat(total))
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("starts as draft with creation date as default due date", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		require.NotNil(t, inv.DueDate)
		assert.Equal(t, inv.CreatedAt, *inv.DueDate)
	})

	t.Run("keeps an explicit due date", func(t *testing.T) {
		due := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		inv, err := NewInvoice(uuid.New(), nil, &due)
		require.NoError(t, err)
		assert.Equal(t, due, *inv.DueDate)
	})

	t.Run("rejects nil organization", func(t *testing.T) {
		_, err := NewInvoice(uuid.Nil, nil, nil)
		assert.Error(t, err)
	})
}

func TestInvoice_AssignNumber(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), nil, nil)
	require.NoError(t, err)

	require.NoError(t, inv.AssignNumber("INV-2026-001"))
	err = inv.AssignNumber("INV-2026-002")
	require.Error(t, err)
	assert.Equal(t, "INV-2026-001", inv.Number)
}

func TestInvoice_Items(t *testing.T) {
	t.Run("total is the sum of quantity times unit price", func(t *testing.T) {
		inv := createTestInvoice(t)
		_, err := inv.AddItem("Consulting", decimal.NewFromInt(3), decimal.NewFromFloat(250.50))
		require.NoError(t, err)
		_, err = inv.AddItem("Travel", decimal.NewFromInt(1), decimal.NewFromFloat(120))
		require.NoError(t, err)

		assert.True(t, inv.Total().Equal(decimal.NewFromFloat(871.50)))
	})

	t.Run("positions follow insertion order and renumber on removal", func(t *testing.T) {
		inv := createTestInvoice(t)
		first, err := inv.AddItem("A", decimal.NewFromInt(1), decimal.NewFromInt(10))
		require.NoError(t, err)
		_, err = inv.AddItem("B", decimal.NewFromInt(1), decimal.NewFromInt(20))
		require.NoError(t, err)

		require.NoError(t, inv.RemoveItem(first.ID))
		require.Len(t, inv.Items, 1)
		assert.Equal(t, 1, inv.Items[0].Position)
		assert.Equal(t, "B", inv.Items[0].Description)
	})

	t.Run("validates item input", func(t *testing.T) {
		inv := createTestInvoice(t)
		_, err := inv.AddItem("", decimal.NewFromInt(1), decimal.NewFromInt(1))
		assert.Error(t, err)
		_, err = inv.AddItem("X", decimal.Zero, decimal.NewFromInt(1))
		assert.Error(t, err)
		_, err = inv.AddItem("X", decimal.NewFromInt(1), decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("no item changes after the invoice is sent", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 100)
		require.NoError(t, inv.MarkSent())
		_, err := inv.AddItem("Late", decimal.NewFromInt(1), decimal.NewFromInt(1))
		assert.Error(t, err)
		assert.Error(t, inv.RemoveItem(inv.Items[0].ID))
	})
}

func TestInvoice_StatusMachine(t *testing.T) {
	t.Run("moves forward only", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.MarkPlanned())
		require.NoError(t, inv.MarkSent())
		assert.Equal(t, InvoiceStatusInvoiced, inv.Status)

		// Backward transition rejected
		assert.Error(t, inv.MarkPlanned())
	})

	t.Run("planned can be skipped", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.MarkSent())
		assert.Equal(t, InvoiceStatusInvoiced, inv.Status)
	})

	t.Run("paid is terminal", func(t *testing.T) {
		assert.True(t, InvoiceStatusPaid.IsTerminal())
		assert.False(t, InvoiceStatusPaid.CanTransitionTo(InvoiceStatusDraft))
		assert.False(t, InvoiceStatusPaid.CanTransitionTo(InvoiceStatusInvoiced))
	})
}

func TestInvoice_RecordPayment(t *testing.T) {
	t.Run("rejects non-positive amounts", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 1000)
		_, err := inv.RecordPayment(valueobject.ZeroEUR(), time.Now(), "")
		assert.Error(t, err)
		_, err = inv.RecordPayment(valueobject.NewMoneyEURFromFloat(-5), time.Now(), "")
		assert.Error(t, err)
		assert.Empty(t, inv.Payments)
	})

	t.Run("rejects currency mismatch", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 1000)
		usd, err := valueobject.NewMoney(decimal.NewFromInt(10), valueobject.USD)
		require.NoError(t, err)
		_, err = inv.RecordPayment(usd, time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("partial payments accumulate until paid", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 1000)
		require.NoError(t, inv.MarkSent())

		_, err := inv.RecordPayment(valueobject.NewMoneyEURFromFloat(400), time.Now(), "wire-1")
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusInvoiced, inv.Status)
		assert.False(t, inv.IsPaid())

		_, err = inv.RecordPayment(valueobject.NewMoneyEURFromFloat(600), time.Now(), "wire-2")
		require.NoError(t, err)
		assert.True(t, inv.IsPaid())
		assert.True(t, inv.PaidToDate().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("a full cent short stays unpaid", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 1000)
		_, err := inv.RecordPayment(valueobject.NewMoneyEURFromFloat(999.99), time.Now(), "")
		require.NoError(t, err)
		assert.False(t, inv.IsPaid())
	})

	t.Run("within epsilon counts as paid", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 1000)
		_, err := inv.RecordPayment(valueobject.NewMoneyEURFromFloat(999.995), time.Now(), "")
		require.NoError(t, err)
		assert.True(t, inv.IsPaid())
	})

	t.Run("overpayment is retained and invoice stays paid", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 1000)
		_, err := inv.RecordPayment(valueobject.NewMoneyEURFromFloat(1200), time.Now(), "")
		require.NoError(t, err)
		assert.True(t, inv.IsPaid())
		assert.True(t, inv.Outstanding().Equal(decimal.NewFromInt(-200)))
	})

	t.Run("replayed payment double-counts, no deduplication by reference", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 1000)
		_, err := inv.RecordPayment(valueobject.NewMoneyEURFromFloat(500), time.Now(), "REF-1")
		require.NoError(t, err)
		_, err = inv.RecordPayment(valueobject.NewMoneyEURFromFloat(500), time.Now(), "REF-1")
		require.NoError(t, err)
		assert.Len(t, inv.Payments, 2)
		assert.True(t, inv.IsPaid())
	})

	t.Run("emits paid event exactly once", func(t *testing.T) {
		inv := createInvoiceWithTotal(t, 1000)
		inv.ClearDomainEvents()

		_, err := inv.RecordPayment(valueobject.NewMoneyEURFromFloat(1000), time.Now(), "")
		require.NoError(t, err)
		_, err = inv.RecordPayment(valueobject.NewMoneyEURFromFloat(10), time.Now(), "")
		require.NoError(t, err)

		paidEvents := 0
		for _, ev := range inv.GetDomainEvents() {
			if ev.EventType() == EventTypeInvoicePaid {
				paidEvents++
			}
		}
		assert.Equal(t, 1, paidEvents)
	})
}
