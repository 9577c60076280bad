package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BillingInterval represents how often installments of a plan fall due
type BillingInterval string

const (
	BillingIntervalMonthly   BillingInterval = "monthly"
	BillingIntervalQuarterly BillingInterval = "quarterly"
	BillingIntervalAnnual    BillingInterval = "annual"
	BillingIntervalCustom    BillingInterval = "custom"
)

// IsValid checks if the billing interval is valid
func (i BillingInterval) IsValid() bool {
	switch i {
	case BillingIntervalMonthly, BillingIntervalQuarterly, BillingIntervalAnnual, BillingIntervalCustom:
		return true
	}
	return false
}

// PlanItemStatus represents the lifecycle of a billing plan item
type PlanItemStatus string

const (
	PlanItemStatusPlanned  PlanItemStatus = "planned"
	PlanItemStatusInvoiced PlanItemStatus = "invoiced"
)

// BillingPlanItem is a planned invoice installment. Once invoiced it is
// immutable and permanently linked to exactly one invoice.
type BillingPlanItem struct {
	shared.BaseEntity
	BillingPlanID uuid.UUID
	DueDate       time.Time
	Amount        decimal.Decimal
	Description   string
	Invoiced      bool
	Status        PlanItemStatus
	InvoiceID     *uuid.UUID
}

// MarkInvoiced links the item to an invoice. The transition happens exactly
// once; a second call is rejected.
func (i *BillingPlanItem) MarkInvoiced(invoiceID uuid.UUID) error {
	if i.Invoiced {
		return shared.NewDomainError("ALREADY_INVOICED", "Billing plan item is already invoiced")
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}

	now := time.Now()
	i.Invoiced = true
	i.Status = PlanItemStatusInvoiced
	i.InvoiceID = &invoiceID
	i.UpdatedAt = now

	return nil
}

// LineDescription returns the invoice line description for the item,
// falling back to "Rate <due date>" when none was entered.
func (i *BillingPlanItem) LineDescription() string {
	if i.Description != "" {
		return i.Description
	}
	return fmt.Sprintf("Rate %s", i.DueDate.Format("2006-01-02"))
}

// BillingPlan is the installment schedule attached to an order (one-to-one)
type BillingPlan struct {
	shared.BaseAggregateRoot
	OrderID  uuid.UUID
	Interval BillingInterval
	Items    []BillingPlanItem
}

// NewBillingPlan creates a new billing plan for an order
func NewBillingPlan(orderID uuid.UUID, interval BillingInterval) (*BillingPlan, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if !interval.IsValid() {
		return nil, shared.NewDomainError("INVALID_INTERVAL", "Billing interval is not valid")
	}

	return &BillingPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Interval:          interval,
		Items:             []BillingPlanItem{},
	}, nil
}

// AddItem appends a planned installment to the plan
func (p *BillingPlan) AddItem(dueDate time.Time, amount valueobject.Money, description string) (*BillingPlanItem, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Plan item amount must be positive")
	}

	item := BillingPlanItem{
		BaseEntity:    shared.NewBaseEntity(),
		BillingPlanID: p.ID,
		DueDate:       dueDate,
		Amount:        amount.Amount(),
		Description:   description,
		Invoiced:      false,
		Status:        PlanItemStatusPlanned,
	}
	p.Items = append(p.Items, item)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return &p.Items[len(p.Items)-1], nil
}

// ItemByID returns the plan item with the given ID, or nil
func (p *BillingPlan) ItemByID(id uuid.UUID) *BillingPlanItem {
	for idx := range p.Items {
		if p.Items[idx].ID == id {
			return &p.Items[idx]
		}
	}
	return nil
}

// OpenItems returns all items that have not been invoiced yet
func (p *BillingPlan) OpenItems() []BillingPlanItem {
	open := make([]BillingPlanItem, 0, len(p.Items))
	for _, item := range p.Items {
		if !item.Invoiced {
			open = append(open, item)
		}
	}
	return open
}

// OpenAmount returns the sum of all not-yet-invoiced installments
func (p *BillingPlan) OpenAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		if !item.Invoiced {
			total = total.Add(item.Amount)
		}
	}
	return total
}
