package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft    InvoiceStatus = "draft"
	InvoiceStatusPlanned  InvoiceStatus = "planned"  // created from billing plan items
	InvoiceStatusInvoiced InvoiceStatus = "invoiced" // sent to the customer
	InvoiceStatusPaid     InvoiceStatus = "paid"     // terminal
)

// statusRank orders the invoice lifecycle. Transitions may only move forward.
var statusRank = map[InvoiceStatus]int{
	InvoiceStatusDraft:    0,
	InvoiceStatusPlanned:  1,
	InvoiceStatusInvoiced: 2,
	InvoiceStatusPaid:     3,
}

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// IsTerminal returns true for the terminal paid state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid
}

// CanTransitionTo returns true if the target status is strictly forward
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	return statusRank[target] > statusRank[s]
}

// PaymentEpsilon absorbs rounding differences when deciding whether an
// invoice is fully paid: totals within 0.01 currency units count as paid.
var PaymentEpsilon = decimal.NewFromFloat(0.01)

// InvoiceItem is a single line on an invoice
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Amount returns quantity x unit price for the line
func (i *InvoiceItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// Payment is a payment recorded against an invoice. Payments are retained
// even when they overshoot or undershoot the invoice total.
type Payment struct {
	shared.BaseEntity
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	PaidAt    time.Time
	Reference string
}

// Invoice is the aggregate root for invoicing and payment tracking
type Invoice struct {
	shared.BaseAggregateRoot
	Number         string
	Status         InvoiceStatus
	DueDate        *time.Time
	OrderID        *uuid.UUID
	OrganizationID uuid.UUID
	Currency       valueobject.Currency
	Items          []InvoiceItem
	Payments       []Payment
}

// NewInvoice creates a new draft invoice without a number. The number is
// assigned once a sequence has been allocated for the year scope. When no
// due date is given it defaults to the creation date.
func NewInvoice(organizationID uuid.UUID, orderID *uuid.UUID, dueDate *time.Time) (*Invoice, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            InvoiceStatusDraft,
		DueDate:           dueDate,
		OrderID:           orderID,
		OrganizationID:    organizationID,
		Currency:          valueobject.DefaultCurrency,
		Items:             []InvoiceItem{},
		Payments:          []Payment{},
	}
	if inv.DueDate == nil {
		created := inv.CreatedAt
		inv.DueDate = &created
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AssignNumber sets the generated invoice number, exactly once
func (inv *Invoice) AssignNumber(number string) error {
	if inv.Number != "" {
		return shared.NewDomainError("NUMBER_ALREADY_ASSIGNED", "Invoice already has a number assigned")
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	inv.Number = number
	inv.UpdatedAt = time.Now()
	return nil
}

// AddItem appends a line to a draft or planned invoice
func (inv *Invoice) AddItem(description string, quantity, unitPrice decimal.Decimal) (*InvoiceItem, error) {
	if statusRank[inv.Status] > statusRank[InvoiceStatusPlanned] {
		return nil, shared.NewDomainError("INVALID_STATE", "Items can only be added before the invoice is sent")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Invoice item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Invoice item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_PRICE", "Invoice item unit price cannot be negative")
	}

	item := InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   inv.ID,
		Position:    len(inv.Items) + 1,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	inv.Items = append(inv.Items, item)
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return &inv.Items[len(inv.Items)-1], nil
}

// RemoveItem removes a line from a draft invoice and renumbers positions
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be removed from draft invoices")
	}
	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			for i := range inv.Items {
				inv.Items[i].Position = i + 1
			}
			inv.UpdatedAt = time.Now()
			inv.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Total returns the invoice total: the sum of all line amounts
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for idx := range inv.Items {
		total = total.Add(inv.Items[idx].Amount())
	}
	return total
}

// PaidToDate returns the sum of all recorded payments
func (inv *Invoice) PaidToDate() decimal.Decimal {
	paid := decimal.Zero
	for idx := range inv.Payments {
		paid = paid.Add(inv.Payments[idx].Amount)
	}
	return paid
}

// Outstanding returns total minus paid-to-date (may be negative on overpayment)
func (inv *Invoice) Outstanding() decimal.Decimal {
	return inv.Total().Sub(inv.PaidToDate())
}

// MarkPlanned tags a draft invoice as created from billing plan items
func (inv *Invoice) MarkPlanned() error {
	return inv.transition(InvoiceStatusPlanned)
}

// MarkSent moves the invoice into the invoiced state once it left the house
func (inv *Invoice) MarkSent() error {
	return inv.transition(InvoiceStatusInvoiced)
}

func (inv *Invoice) transition(target InvoiceStatus) error {
	if !inv.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Invoice status can only move forward (draft, planned, invoiced, paid)")
	}
	previous := inv.Status
	inv.Status = target
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, previous))
	return nil
}

// RecordPayment records a payment against the invoice. The payment is
// persisted unconditionally; partial payments and overpayments are
// legitimate and retained. When paid-to-date reaches the total within
// PaymentEpsilon, the invoice transitions to paid.
//
// Payments are not deduplicated by reference: replaying an identical
// submission double-counts. Duplicate prevention is a caller concern.
func (inv *Invoice) RecordPayment(amount valueobject.Money, paidAt time.Time, reference string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Currency() != inv.Currency {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Payment currency does not match invoice currency")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment := Payment{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  inv.ID,
		Amount:     amount.Amount(),
		PaidAt:     paidAt,
		Reference:  reference,
	}
	inv.Payments = append(inv.Payments, payment)
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	previous := inv.Status
	if inv.Status != InvoiceStatusPaid && inv.isSettled() {
		inv.Status = InvoiceStatusPaid
	}

	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, &inv.Payments[len(inv.Payments)-1], previous))
	if previous != InvoiceStatusPaid && inv.Status == InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	return &inv.Payments[len(inv.Payments)-1], nil
}

// isSettled reports whether paid-to-date covers the total within epsilon.
// The shortfall must be strictly below one cent: a payment of 999.99 on a
// 1000.00 invoice does not settle it, 999.995 does.
func (inv *Invoice) isSettled() bool {
	return inv.PaidToDate().GreaterThan(inv.Total().Sub(PaymentEpsilon))
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// SetDueDate updates the due date of an unsent invoice
func (inv *Invoice) SetDueDate(dueDate *time.Time) error {
	if statusRank[inv.Status] > statusRank[InvoiceStatusPlanned] {
		return shared.NewDomainError("INVALID_STATE", "Due date can only be changed before the invoice is sent")
	}
	inv.DueDate = dueDate
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// GetTotalMoney returns the invoice total as Money
func (inv *Invoice) GetTotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.Total(), inv.Currency)
	return m
}
