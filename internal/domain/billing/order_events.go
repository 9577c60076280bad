package billing

import (
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the billing context
const (
	EventTypeOrderCreated        = "billing.order.created"
	EventTypeOrderNumberAssigned = "billing.order.number_assigned"
	EventTypeOrderStatusChanged  = "billing.order.status_changed"
)

// OrderCreatedEvent is published when an order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrganizationName string          `json:"organization_name"`
	TotalValue       decimal.Decimal `json:"total_value"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderCreated, "Order", o.ID),
		OrganizationName: o.OrganizationName,
		TotalValue:       o.TotalValue,
	}
}

// OrderNumberAssignedEvent is published when a sequence number is allocated
// and assigned to an order
type OrderNumberAssignedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderNumberAssignedEvent creates a new OrderNumberAssignedEvent
func NewOrderNumberAssignedEvent(o *Order) *OrderNumberAssignedEvent {
	return &OrderNumberAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderNumberAssigned, "Order", o.ID),
		OrderNumber:     o.OrderNumber,
	}
}

// OrderStatusChangedEvent is published on every order status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string      `json:"order_number"`
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, previous OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, "Order", o.ID),
		OrderNumber:     o.OrderNumber,
		PreviousStatus:  previous,
		NewStatus:       o.Status,
	}
}
