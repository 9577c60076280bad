package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/kontor/backend/internal/domain/numbering"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/kontor/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StoredDocument identifies an archived invoice document in external storage
type StoredDocument struct {
	DriveID string `json:"drive_id"`
	ItemID  string `json:"item_id"`
	WebURL  string `json:"web_url"`
}

// DocumentStore archives rendered invoice documents
type DocumentStore interface {
	StoreInvoiceDocument(ctx context.Context, invoiceNumber string, content []byte) (*StoredDocument, error)
}

// InvoiceService handles invoice-related business operations
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	orderRepo      billing.OrderRepository
	planRepo       billing.BillingPlanRepository
	documentStore  DocumentStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	orderRepo billing.OrderRepository,
	planRepo billing.BillingPlanRepository,
	documentStore DocumentStore,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		orderRepo:      orderRepo,
		planRepo:       planRepo,
		documentStore:  documentStore,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// InvoiceItemInput is one line of an invoice creation request
type InvoiceItemInput struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest is the input for creating a standalone invoice
type CreateInvoiceRequest struct {
	OrganizationID uuid.UUID          `json:"organization_id" binding:"required"`
	OrderID        *uuid.UUID         `json:"order_id"`
	DueDate        *time.Time         `json:"due_date"`
	Items          []InvoiceItemInput `json:"items"`
}

// CreateInvoiceFromPlanRequest is the input for invoicing billing plan items
type CreateInvoiceFromPlanRequest struct {
	OrderID uuid.UUID   `json:"order_id" binding:"required"`
	ItemIDs []uuid.UUID `json:"item_ids" binding:"required"`
}

// RecordPaymentRequest is the input for recording a payment on an invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	PaidAt    *time.Time      `json:"paid_at"`
	Reference string          `json:"reference"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	Reference string          `json:"reference,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	Number         string                `json:"number"`
	Status         string                `json:"status"`
	OrganizationID uuid.UUID             `json:"organization_id"`
	OrderID        *uuid.UUID            `json:"order_id,omitempty"`
	DueDate        *time.Time            `json:"due_date,omitempty"`
	Currency       string                `json:"currency"`
	Total          decimal.Decimal       `json:"total"`
	PaidToDate     decimal.Decimal       `json:"paid_to_date"`
	Outstanding    decimal.Decimal       `json:"outstanding"`
	Items          []InvoiceItemResponse `json:"items"`
	Payments       []PaymentResponse     `json:"payments,omitempty"`
	SkippedItemIDs []uuid.UUID           `json:"skipped_item_ids,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search         string     `form:"search"`
	OrganizationID *uuid.UUID `form:"organization_id"`
	OrderID        *uuid.UUID `form:"order_id"`
	Status         string     `form:"status"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
}

// ToInvoiceResponse converts a domain invoice to a response
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for idx := range inv.Items {
		item := &inv.Items[idx]
		items = append(items, InvoiceItemResponse{
			ID:          item.ID,
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount(),
		})
	}
	payments := make([]PaymentResponse, 0, len(inv.Payments))
	for idx := range inv.Payments {
		p := &inv.Payments[idx]
		payments = append(payments, PaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			PaidAt:    p.PaidAt,
			Reference: p.Reference,
		})
	}
	return InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		Status:         string(inv.Status),
		OrganizationID: inv.OrganizationID,
		OrderID:        inv.OrderID,
		DueDate:        inv.DueDate,
		Currency:       string(inv.Currency),
		Total:          inv.Total(),
		PaidToDate:     inv.PaidToDate(),
		Outstanding:    inv.Outstanding(),
		Items:          items,
		Payments:       payments,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}

// Create creates a standalone invoice with the given lines and assigns its
// number from the calendar-year sequence. Allocation conflicts retry the
// whole creation with a fresh aggregate, bounded by numbering.MaxRetries.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing.invoice", "create",
		attribute.String("organization_id", req.OrganizationID.String()))
	defer span.End()

	if req.OrderID != nil {
		if _, err := s.orderRepo.FindByID(ctx, *req.OrderID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < numbering.MaxRetries; attempt++ {
		inv, err := billing.NewInvoice(req.OrganizationID, req.OrderID, req.DueDate)
		if err != nil {
			return nil, err
		}
		for _, item := range req.Items {
			if _, err := inv.AddItem(item.Description, item.Quantity, item.UnitPrice); err != nil {
				return nil, err
			}
		}

		err = s.invoiceRepo.CreateWithNumber(ctx, inv, inv.CreatedAt.Year())
		if err == nil {
			span.SetAttributes(attribute.String("invoice_number", inv.Number))
			s.publishEvents(ctx, inv.GetDomainEvents())
			inv.ClearDomainEvents()
			response := ToInvoiceResponse(inv)
			return &response, nil
		}
		if !errors.Is(err, shared.ErrAllocationConflict) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		telemetry.AddEvent(span, "allocation_retry", attribute.Int("attempt", attempt+1))
		lastErr = err
	}
	telemetry.RecordError(span, lastErr)
	return nil, lastErr
}

// CreateFromPlan creates an invoice from selected billing plan items of an
// order. Items already invoiced are skipped silently and reported in the
// response; the invoice, the consumed item state and the allocated number
// are persisted in one transaction.
func (s *InvoiceService) CreateFromPlan(ctx context.Context, req CreateInvoiceFromPlanRequest) (*InvoiceResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < numbering.MaxRetries; attempt++ {
		// The plan is re-read per attempt so a conflicting allocation never
		// leaves half-consumed items behind
		plan, err := s.planRepo.FindByOrder(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}

		inv, err := billing.NewInvoice(order.OrganizationID, &order.ID, nil)
		if err != nil {
			return nil, err
		}
		result, err := billing.ConsumePlanItems(plan, inv, req.ItemIDs)
		if err != nil {
			return nil, err
		}
		if err := inv.MarkPlanned(); err != nil {
			return nil, err
		}

		err = s.invoiceRepo.CreateFromPlan(ctx, inv, inv.CreatedAt.Year(), plan)
		if err == nil {
			s.publishEvents(ctx, inv.GetDomainEvents())
			inv.ClearDomainEvents()
			response := ToInvoiceResponse(inv)
			response.SkippedItemIDs = result.SkippedIDs
			return &response, nil
		}
		if !errors.Is(err, shared.ErrAllocationConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// AddItem appends a line to an invoice that has not been sent yet
func (s *InvoiceService) AddItem(ctx context.Context, id uuid.UUID, item InvoiceItemInput) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := inv.AddItem(item.Description, item.Quantity, item.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// RemoveItem removes a line from a draft invoice
func (s *InvoiceService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.OrganizationID != nil {
		domainFilter.Filters["organization_id"] = *filter.OrganizationID
	}
	if filter.OrderID != nil {
		domainFilter.Filters["order_id"] = *filter.OrderID
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for idx := range invoices {
		responses = append(responses, ToInvoiceResponse(&invoices[idx]))
	}
	return responses, total, nil
}

// MarkSent moves the invoice into the invoiced state and archives the
// rendered document. Archiving is best-effort: a storage failure is logged
// but never rolls back the status change.
func (s *InvoiceService) MarkSent(ctx context.Context, id uuid.UUID, document []byte) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.MarkSent(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()

	if s.documentStore != nil && len(document) > 0 {
		if _, err := s.documentStore.StoreInvoiceDocument(ctx, inv.Number, document); err != nil {
			s.logger.Warn("invoice document archiving failed",
				zap.String("invoice_number", inv.Number),
				zap.Error(err))
		}
	}

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// ArchiveDocument explicitly stores a rendered invoice document. Unlike the
// best-effort archiving on MarkSent, a storage failure here is surfaced.
func (s *InvoiceService) ArchiveDocument(ctx context.Context, id uuid.UUID, document []byte) (*StoredDocument, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.documentStore == nil {
		return nil, shared.ErrDocumentPersist
	}
	stored, err := s.documentStore.StoreInvoiceDocument(ctx, inv.Number, document)
	if err != nil {
		s.logger.Error("invoice document archiving failed",
			zap.String("invoice_number", inv.Number),
			zap.Error(err))
		return nil, shared.ErrDocumentPersist
	}
	return stored, nil
}

// RecordPayment records a payment against an invoice. Payments are stored
// as submitted; duplicate submissions are not filtered here.
func (s *InvoiceService) RecordPayment(ctx context.Context, id uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing.invoice", "record_payment",
		attribute.String("invoice_id", id.String()))
	defer span.End()

	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	amount, err := valueobject.NewMoney(req.Amount, inv.Currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}

	if _, err := inv.RecordPayment(amount, paidAt, req.Reference); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("invoice_status", string(inv.Status)))

	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()

	response := ToInvoiceResponse(inv)
	return &response, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}
