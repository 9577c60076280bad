// Package billing provides application services for orders, billing plans,
// invoices and payment tracking.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/kontor/backend/internal/domain/numbering"
	"github.com/kontor/backend/internal/domain/partner"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/kontor/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderService handles order-related business operations
type OrderService struct {
	orderRepo      billing.OrderRepository
	orgRepo        partner.OrganizationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo billing.OrderRepository,
	orgRepo partner.OrganizationRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:      orderRepo,
		orgRepo:        orgRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateOrderRequest is the input for creating an order
type CreateOrderRequest struct {
	OrganizationID   uuid.UUID       `json:"organization_id" binding:"required"`
	TotalValue       decimal.Decimal `json:"total_value"`
	StartDate        *time.Time      `json:"start_date"`
	EndDate          *time.Time      `json:"end_date"`
	PaymentTermsDays int             `json:"payment_terms_days"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"order_number"`
	OrganizationID   uuid.UUID       `json:"organization_id"`
	OrganizationName string          `json:"organization_name"`
	Status           string          `json:"status"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	TotalValue       decimal.Decimal `json:"total_value"`
	Currency         string          `json:"currency"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// OrderListFilter defines filtering options for order list queries
type OrderListFilter struct {
	Search         string     `form:"search"`
	OrganizationID *uuid.UUID `form:"organization_id"`
	Status         string     `form:"status"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *billing.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		OrganizationID:   o.OrganizationID,
		OrganizationName: o.OrganizationName,
		Status:           string(o.Status),
		StartDate:        o.StartDate,
		EndDate:          o.EndDate,
		TotalValue:       o.TotalValue,
		Currency:         string(o.Currency),
		PaymentTermsDays: o.PaymentTermsDays,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// Create creates a new order and assigns its number. The number sequence is
// allocated inside the repository transaction; on an allocation conflict the
// whole creation is retried with a fresh aggregate, bounded by
// numbering.MaxRetries.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing.order", "create",
		attribute.String("organization_id", req.OrganizationID.String()))
	defer span.End()

	org, err := s.orgRepo.FindByID(ctx, req.OrganizationID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	totalValue := valueobject.NewMoneyEUR(req.TotalValue)
	customerCode := numbering.CustomerCode(org.Name)

	var lastErr error
	for attempt := 0; attempt < numbering.MaxRetries; attempt++ {
		order, err := billing.NewOrder(org.ID, org.Name, totalValue, req.StartDate, req.EndDate, req.PaymentTermsDays)
		if err != nil {
			return nil, err
		}

		err = s.orderRepo.CreateWithNumber(ctx, order, customerCode)
		if err == nil {
			span.SetAttributes(attribute.String("order_number", order.OrderNumber))
			s.publishEvents(ctx, order.GetDomainEvents())
			order.ClearDomainEvents()
			response := ToOrderResponse(order)
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

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves an order by its order number
func (s *OrderService) GetByNumber(ctx context.Context, number string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
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

	orders, total, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for idx := range orders {
		responses = append(responses, ToOrderResponse(&orders[idx]))
	}
	return responses, total, nil
}

// Activate moves a draft order into the active state
func (s *OrderService) Activate(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.lifecycle(ctx, id, func(o *billing.Order) error { return o.Activate() })
}

// Complete moves an active order into the completed state
func (s *OrderService) Complete(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.lifecycle(ctx, id, func(o *billing.Order) error { return o.Complete() })
}

// Cancel cancels a draft order
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	return s.lifecycle(ctx, id, func(o *billing.Order) error { return o.Cancel() })
}

func (s *OrderService) lifecycle(ctx context.Context, id uuid.UUID, action func(*billing.Order) error) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := action(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}
