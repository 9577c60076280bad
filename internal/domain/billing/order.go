package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusActive, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if the order is in a terminal state
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order represents a customer order. It owns at most one billing plan and
// any number of invoices, budget plans and actual costs.
type Order struct {
	shared.BaseAggregateRoot
	OrganizationID   uuid.UUID
	OrganizationName string // snapshot at creation, used for the customer code
	OrderNumber      string // empty until assigned
	StartDate        *time.Time
	EndDate          *time.Time
	Status           OrderStatus
	TotalValue       decimal.Decimal
	Currency         valueobject.Currency
	PaymentTermsDays int
}

// NewOrder creates a new draft order without a number. The number is
// assigned by the application service once a sequence has been allocated.
func NewOrder(
	organizationID uuid.UUID,
	organizationName string,
	totalValue valueobject.Money,
	startDate, endDate *time.Time,
	paymentTermsDays int,
) (*Order, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if organizationName == "" {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot be empty")
	}
	if totalValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order total value cannot be negative")
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Order end date cannot be before start date")
	}
	if paymentTermsDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrganizationID:    organizationID,
		OrganizationName:  organizationName,
		Status:            OrderStatusDraft,
		StartDate:         startDate,
		EndDate:           endDate,
		TotalValue:        totalValue.Amount(),
		Currency:          totalValue.Currency(),
		PaymentTermsDays:  paymentTermsDays,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AssignNumber sets the generated order number. A number is assigned
// exactly once; reassignment is a programming error.
func (o *Order) AssignNumber(number string) error {
	if o.OrderNumber != "" {
		return shared.NewDomainError("NUMBER_ALREADY_ASSIGNED", "Order already has a number assigned")
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}

	o.OrderNumber = number
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderNumberAssignedEvent(o))

	return nil
}

// Activate moves a draft order into the active state
func (o *Order) Activate() error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be activated")
	}
	if o.OrderNumber == "" {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be activated without a number")
	}
	o.setStatus(OrderStatusActive)
	return nil
}

// Complete moves an active order into the completed state
func (o *Order) Complete() error {
	if o.Status != OrderStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active orders can be completed")
	}
	o.setStatus(OrderStatusCompleted)
	return nil
}

// Cancel cancels a draft order. Active orders must be completed instead.
func (o *Order) Cancel() error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be cancelled")
	}
	o.setStatus(OrderStatusCancelled)
	return nil
}

func (o *Order) setStatus(status OrderStatus) {
	previous := o.Status
	o.Status = status
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
}

// GetTotalValueMoney returns the order total as Money
func (o *Order) GetTotalValueMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.TotalValue, o.Currency)
	return m
}

// NumberYear returns the calendar year the order number should be scoped to:
// the start date's year when present, otherwise the creation year.
func (o *Order) NumberYear() int {
	if o.StartDate != nil {
		return o.StartDate.Year()
	}
	return o.CreatedAt.Year()
}
