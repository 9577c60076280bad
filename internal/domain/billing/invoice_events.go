package billing

import (
	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for invoices
const (
	EventTypeInvoiceCreated         = "billing.invoice.created"
	EventTypeInvoiceStatusChanged   = "billing.invoice.status_changed"
	EventTypeInvoicePaymentRecorded = "billing.invoice.payment_recorded"
	EventTypeInvoicePaid            = "billing.invoice.paid"
	EventTypePlanItemsConsumed      = "billing.invoice.plan_items_consumed"
)

// InvoiceCreatedEvent is published when an invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	Number  string     `json:"number"`
	OrderID *uuid.UUID `json:"order_id,omitempty"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", inv.ID),
		Number:          inv.Number,
		OrderID:         inv.OrderID,
	}
}

// InvoiceStatusChangedEvent is published on every invoice status transition
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	Number         string        `json:"number"`
	PreviousStatus InvoiceStatus `json:"previous_status"`
	NewStatus      InvoiceStatus `json:"new_status"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, previous InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, "Invoice", inv.ID),
		Number:          inv.Number,
		PreviousStatus:  previous,
		NewStatus:       inv.Status,
	}
}

// InvoicePaymentRecordedEvent is published for every recorded payment,
// carrying the status before and after for the audit trail
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	Number         string          `json:"number"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference,omitempty"`
	PaidToDate     decimal.Decimal `json:"paid_to_date"`
	Total          decimal.Decimal `json:"total"`
	PreviousStatus InvoiceStatus   `json:"previous_status"`
	NewStatus      InvoiceStatus   `json:"new_status"`
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(inv *Invoice, payment *Payment, previous InvoiceStatus) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRecorded, "Invoice", inv.ID),
		Number:          inv.Number,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		Reference:       payment.Reference,
		PaidToDate:      inv.PaidToDate(),
		Total:           inv.Total(),
		PreviousStatus:  previous,
		NewStatus:       inv.Status,
	}
}

// InvoicePaidEvent is published once when an invoice reaches the paid state
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID),
		Number:          inv.Number,
		Total:           inv.Total(),
	}
}

// PlanItemsConsumedEvent is published when billing plan items are converted
// into invoice lines
type PlanItemsConsumedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string      `json:"invoice_number"`
	ItemIDs       []uuid.UUID `json:"item_ids"`
	SkippedIDs    []uuid.UUID `json:"skipped_ids,omitempty"`
}

// NewPlanItemsConsumedEvent creates a new PlanItemsConsumedEvent
func NewPlanItemsConsumedEvent(inv *Invoice, consumed, skipped []uuid.UUID) *PlanItemsConsumedEvent {
	return &PlanItemsConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanItemsConsumed, "Invoice", inv.ID),
		InvoiceNumber:   inv.Number,
		ItemIDs:         consumed,
		SkippedIDs:      skipped,
	}
}
