package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
)

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)
	FindByOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]Order, error)
	// CreateWithNumber allocates the next sequence for the order's scope,
	// formats and assigns the order number, and inserts the order, all in
	// one transaction. Returns ErrAllocationConflict when a concurrent
	// allocation won; callers retry with a fresh read, bounded.
	CreateWithNumber(ctx context.Context, order *Order, customerCode string) error
	Save(ctx context.Context, order *Order) error
}

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, int64, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Invoice, error)
	// CreateWithNumber allocates the next sequence for the invoice year
	// scope, formats and sets the invoice number, and inserts the invoice
	// together with its items in one transaction.
	CreateWithNumber(ctx context.Context, invoice *Invoice, year int) error
	// CreateFromPlan persists a new invoice and the consumed state of the
	// billing plan items in one transaction.
	CreateFromPlan(ctx context.Context, invoice *Invoice, year int, plan *BillingPlan) error
	Save(ctx context.Context, invoice *Invoice) error
}

// BillingPlanRepository defines persistence operations for billing plans
type BillingPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BillingPlan, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*BillingPlan, error)
	Save(ctx context.Context, plan *BillingPlan) error
}
