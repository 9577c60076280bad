package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PlanConsumptionResult describes the outcome of converting billing plan
// items into invoice lines
type PlanConsumptionResult struct {
	ConsumedIDs   []uuid.UUID
	SkippedIDs    []uuid.UUID // already invoiced, silently excluded
	Amount        decimal.Decimal
	LatestDueDate *time.Time
}

// ConsumePlanItems converts the selected billing plan items into lines on
// the invoice. Each consumed item becomes one line with quantity 1 and a
// unit price equal to the installment amount, and is marked invoiced
// exactly once.
//
// Items that are already invoiced are silently skipped so that re-selecting
// them in a later draft has no effect. Items that do not belong to the plan
// at all are a NotFound failure. Callers must persist plan and invoice in
// one transaction to keep the consumption atomic.
func ConsumePlanItems(plan *BillingPlan, invoice *Invoice, itemIDs []uuid.UUID) (*PlanConsumptionResult, error) {
	if plan == nil {
		return nil, shared.NewDomainError("INVALID_PLAN", "Billing plan is required")
	}
	if invoice == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice is required")
	}
	if invoice.Status != InvoiceStatusDraft && invoice.Status != InvoiceStatusPlanned {
		return nil, shared.NewDomainError("INVALID_STATE", "Plan items can only be consumed into an unsent invoice")
	}
	if invoice.OrderID == nil || *invoice.OrderID != plan.OrderID {
		return nil, shared.NewDomainError("INVALID_ORDER", "Invoice does not belong to the plan's order")
	}

	result := &PlanConsumptionResult{
		ConsumedIDs: []uuid.UUID{},
		SkippedIDs:  []uuid.UUID{},
		Amount:      decimal.Zero,
	}

	for _, id := range itemIDs {
		item := plan.ItemByID(id)
		if item == nil {
			return nil, shared.ErrNotFound
		}
		if item.Invoiced {
			result.SkippedIDs = append(result.SkippedIDs, id)
			continue
		}

		if _, err := invoice.AddItem(item.LineDescription(), decimal.NewFromInt(1), item.Amount); err != nil {
			return nil, err
		}
		if err := item.MarkInvoiced(invoice.ID); err != nil {
			return nil, err
		}

		result.ConsumedIDs = append(result.ConsumedIDs, id)
		result.Amount = result.Amount.Add(item.Amount)
		if result.LatestDueDate == nil || item.DueDate.After(*result.LatestDueDate) {
			due := item.DueDate
			result.LatestDueDate = &due
		}
	}

	// The invoice should not be due before its last covering installment.
	if result.LatestDueDate != nil {
		if err := invoice.SetDueDate(result.LatestDueDate); err != nil {
			return nil, err
		}
	}

	if len(result.ConsumedIDs) > 0 {
		invoice.AddDomainEvent(NewPlanItemsConsumedEvent(invoice, result.ConsumedIDs, result.SkippedIDs))
	}

	return result, nil
}
