package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/kontor/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.PaymentModel{},
		&models.BillingPlanModel{},
		&models.BillingPlanItemModel{},
		&models.NumberSequenceModel{},
	))
	return db
}

func newTestInvoice(t *testing.T, orderID *uuid.UUID) *billing.Invoice {
	t.Helper()
	invoice, err := billing.NewInvoice(uuid.New(), orderID, nil)
	require.NoError(t, err)
	return invoice
}

func TestGormInvoiceRepository_CreateWithNumber(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	t.Run("assigns year-scoped numbers in sequence", func(t *testing.T) {
		first := newTestInvoice(t, nil)
		require.NoError(t, repo.CreateWithNumber(ctx, first, 2026))
		assert.Equal(t, "INV-2026-001", first.Number)

		second := newTestInvoice(t, nil)
		require.NoError(t, repo.CreateWithNumber(ctx, second, 2026))
		assert.Equal(t, "INV-2026-002", second.Number)
	})

	t.Run("a new year restarts the sequence", func(t *testing.T) {
		invoice := newTestInvoice(t, nil)
		require.NoError(t, repo.CreateWithNumber(ctx, invoice, 2027))
		assert.Equal(t, "INV-2027-001", invoice.Number)
	})

	t.Run("persists items with the invoice", func(t *testing.T) {
		invoice := newTestInvoice(t, nil)
		_, err := invoice.AddItem("Beratung Maerz", decimal.NewFromInt(10), decimal.NewFromFloat(120.50))
		require.NoError(t, err)
		_, err = invoice.AddItem("Fahrtkosten", decimal.NewFromInt(1), decimal.NewFromFloat(89.90))
		require.NoError(t, err)

		require.NoError(t, repo.CreateWithNumber(ctx, invoice, 2026))

		found, err := repo.FindByNumber(ctx, invoice.Number)
		require.NoError(t, err)
		require.Len(t, found.Items, 2)
		assert.Equal(t, "Beratung Maerz", found.Items[0].Description)
		assert.True(t, found.Total().Equal(decimal.NewFromFloat(1294.90)))
	})

	t.Run("sequence overflow surfaces", func(t *testing.T) {
		require.NoError(t, db.Create(&models.NumberSequenceModel{
			Scope: "INV-2030-",
			Value: 999,
		}).Error)

		invoice := newTestInvoice(t, nil)
		err := repo.CreateWithNumber(ctx, invoice, 2030)
		assert.ErrorIs(t, err, shared.ErrSequenceOverflow)
	})
}

func TestGormInvoiceRepository_CreateFromPlan(t *testing.T) {
	db := setupInvoiceTestDB(t)
	invoiceRepo := NewGormInvoiceRepository(db)
	planRepo := NewGormBillingPlanRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	plan, err := billing.NewBillingPlan(orderID, billing.BillingIntervalMonthly)
	require.NoError(t, err)
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		_, err := plan.AddItem(due.AddDate(0, i, 0), valueobject.NewMoneyEURFromFloat(500), "")
		require.NoError(t, err)
	}
	require.NoError(t, planRepo.Save(ctx, plan))

	t.Run("marks consumed items and creates the invoice atomically", func(t *testing.T) {
		invoice := newTestInvoice(t, &orderID)
		for _, item := range plan.OpenItems()[:2] {
			_, err := invoice.AddItem(item.LineDescription(), decimal.NewFromInt(1), item.Amount)
			require.NoError(t, err)
			require.NoError(t, plan.ItemByID(item.ID).MarkInvoiced(invoice.ID))
		}
		require.NoError(t, invoice.MarkPlanned())

		require.NoError(t, invoiceRepo.CreateFromPlan(ctx, invoice, 2026, plan))
		assert.Equal(t, "INV-2026-001", invoice.Number)

		stored, err := planRepo.FindByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Len(t, stored.OpenItems(), 1)
		for _, item := range stored.Items {
			if item.Invoiced {
				require.NotNil(t, item.InvoiceID)
				assert.Equal(t, invoice.ID, *item.InvoiceID)
			}
		}

		found, err := invoiceRepo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPlanned, found.Status)
		assert.True(t, found.Total().Equal(decimal.NewFromInt(1000)))
	})
}

func TestGormInvoiceRepository_Save(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, nil)
	_, err := invoice.AddItem("Projektarbeit", decimal.NewFromInt(1), decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, repo.CreateWithNumber(ctx, invoice, 2026))

	t.Run("persists status transition and payments", func(t *testing.T) {
		require.NoError(t, invoice.MarkSent())
		_, err := invoice.RecordPayment(valueobject.NewMoneyEURFromFloat(400), time.Now(), "TRX-1")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, invoice))

		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusInvoiced, found.Status)
		require.Len(t, found.Payments, 1)
		assert.True(t, found.PaidToDate().Equal(decimal.NewFromInt(400)))
		assert.True(t, found.Outstanding().Equal(decimal.NewFromInt(600)))
	})

	t.Run("settling payment flips the stored status to paid", func(t *testing.T) {
		_, err := invoice.RecordPayment(valueobject.NewMoneyEURFromFloat(600), time.Now(), "TRX-2")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, invoice))

		found, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, found.Status)
		require.Len(t, found.Payments, 2)
	})

	t.Run("stale writer conflicts instead of losing a payment", func(t *testing.T) {
		contested := newTestInvoice(t, nil)
		_, err := contested.AddItem("Bauleitung", decimal.NewFromInt(1), decimal.NewFromInt(1000))
		require.NoError(t, err)
		require.NoError(t, repo.CreateWithNumber(ctx, contested, 2026))
		require.NoError(t, contested.MarkSent())
		require.NoError(t, repo.Save(ctx, contested))

		first, err := repo.FindByID(ctx, contested.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, contested.ID)
		require.NoError(t, err)

		_, err = first.RecordPayment(valueobject.NewMoneyEURFromFloat(400), time.Now(), "TRX-A")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))

		_, err = second.RecordPayment(valueobject.NewMoneyEURFromFloat(600), time.Now(), "TRX-B")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

		// The rejected write rolled back completely
		stored, err := repo.FindByID(ctx, contested.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusInvoiced, stored.Status)
		require.Len(t, stored.Payments, 1)
		assert.True(t, stored.Outstanding().Equal(decimal.NewFromInt(600)))

		// A fresh copy sees the first payment and settles the invoice
		_, err = stored.RecordPayment(valueobject.NewMoneyEURFromFloat(600), time.Now(), "TRX-B")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, stored))

		settled, err := repo.FindByID(ctx, contested.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, settled.Status)
		require.Len(t, settled.Payments, 2)
	})

	t.Run("FindByOrder returns invoices linked to the order", func(t *testing.T) {
		orderID := uuid.New()
		linked := newTestInvoice(t, &orderID)
		require.NoError(t, repo.CreateWithNumber(ctx, linked, 2026))

		invoices, err := repo.FindByOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, linked.Number, invoices[0].Number)
	})
}
