package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrganizationID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	OrganizationName string              `gorm:"type:varchar(200);not null"`
	OrderNumber      string              `gorm:"type:varchar(20);not null;uniqueIndex:idx_orders_number"`
	StartDate        *time.Time          `gorm:"index"`
	EndDate          *time.Time          ``
	Status           billing.OrderStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	TotalValue       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Currency         string              `gorm:"type:varchar(3);not null;default:'EUR'"`
	PaymentTermsDays int                 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *billing.Order {
	o := &billing.Order{
		OrganizationID:   m.OrganizationID,
		OrganizationName: m.OrganizationName,
		OrderNumber:      m.OrderNumber,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		Status:           m.Status,
		TotalValue:       m.TotalValue,
		Currency:         valueobject.Currency(m.Currency),
		PaymentTermsDays: m.PaymentTermsDays,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *billing.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrganizationID = o.OrganizationID
	m.OrganizationName = o.OrganizationName
	m.OrderNumber = o.OrderNumber
	m.StartDate = o.StartDate
	m.EndDate = o.EndDate
	m.Status = o.Status
	m.TotalValue = o.TotalValue
	m.Currency = string(o.Currency)
	m.PaymentTermsDays = o.PaymentTermsDays
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *billing.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	Number         string                `gorm:"type:varchar(20);not null;uniqueIndex:idx_invoices_number"`
	Status         billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	DueDate        *time.Time            `gorm:"index"`
	OrderID        *uuid.UUID            `gorm:"type:uuid;index"`
	OrganizationID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Currency       string                `gorm:"type:varchar(3);not null;default:'EUR'"`
	Items          []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments       []PaymentModel        `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		Number:         m.Number,
		Status:         m.Status,
		DueDate:        m.DueDate,
		OrderID:        m.OrderID,
		OrganizationID: m.OrganizationID,
		Currency:       valueobject.Currency(m.Currency),
		Items:          make([]billing.InvoiceItem, len(m.Items)),
		Payments:       make([]billing.Payment, len(m.Payments)),
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	for i, item := range m.Items {
		inv.Items[i] = *item.ToDomain()
	}
	for i, payment := range m.Payments {
		inv.Payments[i] = *payment.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.Number = inv.Number
	m.Status = inv.Status
	m.DueDate = inv.DueDate
	m.OrderID = inv.OrderID
	m.OrganizationID = inv.OrganizationID
	m.Currency = string(inv.Currency)
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&item)
	}
	m.Payments = make([]PaymentModel, len(inv.Payments))
	for i, payment := range inv.Payments {
		m.Payments[i] = *PaymentModelFromDomain(&payment)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for an invoice line.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		InvoiceID:   m.InvoiceID,
		Position:    m.Position,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem.
func InvoiceItemModelFromDomain(item *billing.InvoiceItem) *InvoiceItemModel {
	m := &InvoiceItemModel{}
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.Position = item.Position
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	return m
}

// PaymentModel is the persistence model for a payment recorded against an invoice.
type PaymentModel struct {
	BaseModel
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAt    time.Time       `gorm:"not null;index"`
	Reference string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		InvoiceID:  m.InvoiceID,
		Amount:     m.Amount,
		PaidAt:     m.PaidAt,
		Reference:  m.Reference,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomainBaseEntity(p.BaseEntity)
	m.InvoiceID = p.InvoiceID
	m.Amount = p.Amount
	m.PaidAt = p.PaidAt
	m.Reference = p.Reference
	return m
}

// BillingPlanModel is the persistence model for the BillingPlan aggregate root.
// The unique index on order_id enforces the one-plan-per-order rule.
type BillingPlanModel struct {
	AggregateModel
	OrderID  uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_billing_plans_order"`
	Interval string                 `gorm:"type:varchar(20);not null"`
	Items    []BillingPlanItemModel `gorm:"foreignKey:BillingPlanID;references:ID"`
}

// TableName returns the table name for GORM
func (BillingPlanModel) TableName() string {
	return "billing_plans"
}

// ToDomain converts the persistence model to a domain BillingPlan entity.
func (m *BillingPlanModel) ToDomain() *billing.BillingPlan {
	p := &billing.BillingPlan{
		OrderID:  m.OrderID,
		Interval: billing.BillingInterval(m.Interval),
		Items:    make([]billing.BillingPlanItem, len(m.Items)),
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	for i, item := range m.Items {
		p.Items[i] = *item.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain BillingPlan entity.
func (m *BillingPlanModel) FromDomain(p *billing.BillingPlan) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.OrderID = p.OrderID
	m.Interval = string(p.Interval)
	m.Items = make([]BillingPlanItemModel, len(p.Items))
	for i, item := range p.Items {
		m.Items[i] = *BillingPlanItemModelFromDomain(&item)
	}
}

// BillingPlanModelFromDomain creates a new persistence model from a domain BillingPlan.
func BillingPlanModelFromDomain(p *billing.BillingPlan) *BillingPlanModel {
	m := &BillingPlanModel{}
	m.FromDomain(p)
	return m
}

// BillingPlanItemModel is the persistence model for a planned installment.
type BillingPlanItemModel struct {
	BaseModel
	BillingPlanID uuid.UUID       `gorm:"type:uuid;not null;index"`
	DueDate       time.Time       `gorm:"not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description   string          `gorm:"type:varchar(500)"`
	Invoiced      bool            `gorm:"not null;default:false"`
	Status        string          `gorm:"type:varchar(20);not null;default:'planned'"`
	InvoiceID     *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (BillingPlanItemModel) TableName() string {
	return "billing_plan_items"
}

// ToDomain converts the persistence model to a domain BillingPlanItem entity.
func (m *BillingPlanItemModel) ToDomain() *billing.BillingPlanItem {
	return &billing.BillingPlanItem{
		BaseEntity:    m.BaseModel.ToDomain(),
		BillingPlanID: m.BillingPlanID,
		DueDate:       m.DueDate,
		Amount:        m.Amount,
		Description:   m.Description,
		Invoiced:      m.Invoiced,
		Status:        billing.PlanItemStatus(m.Status),
		InvoiceID:     m.InvoiceID,
	}
}

// BillingPlanItemModelFromDomain creates a new persistence model from a domain BillingPlanItem.
func BillingPlanItemModelFromDomain(item *billing.BillingPlanItem) *BillingPlanItemModel {
	m := &BillingPlanItemModel{}
	m.FromDomainBaseEntity(item.BaseEntity)
	m.BillingPlanID = item.BillingPlanID
	m.DueDate = item.DueDate
	m.Amount = item.Amount
	m.Description = item.Description
	m.Invoiced = item.Invoiced
	m.Status = string(item.Status)
	m.InvoiceID = item.InvoiceID
	return m
}
