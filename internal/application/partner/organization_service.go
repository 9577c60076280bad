// Package partner provides application services for managing organizations.
package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/numbering"
	"github.com/kontor/backend/internal/domain/partner"
	"github.com/kontor/backend/internal/domain/shared"
)

// OrganizationService handles organization-related business operations
type OrganizationService struct {
	orgRepo        partner.OrganizationRepository
	eventPublisher shared.EventPublisher
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(orgRepo partner.OrganizationRepository, eventPublisher shared.EventPublisher) *OrganizationService {
	return &OrganizationService{
		orgRepo:        orgRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateOrganizationRequest is the input for creating an organization
type CreateOrganizationRequest struct {
	Name      string            `json:"name" binding:"required"`
	Type      string            `json:"type" binding:"required"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Notes     string            `json:"notes"`
	Addresses []partner.Address `json:"addresses"`
}

// UpdateOrganizationRequest is the input for updating an organization
type UpdateOrganizationRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// OrganizationResponse represents an organization in API responses
type OrganizationResponse struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	CustomerCode string            `json:"customer_code"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Addresses    []partner.Address `json:"addresses"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Version      int               `json:"version"`
}

// OrganizationListFilter defines filtering options for organization list queries
type OrganizationListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToOrganizationResponse converts a domain organization to a response.
// The customer code shown is derived from the current name; codes baked
// into existing order numbers do not change on rename.
func ToOrganizationResponse(org *partner.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           org.ID,
		Name:         org.Name,
		Type:         string(org.Type),
		CustomerCode: numbering.CustomerCode(org.Name),
		Email:        org.Email,
		Phone:        org.Phone,
		Notes:        org.Notes,
		Addresses:    org.Addresses,
		CreatedAt:    org.CreatedAt,
		UpdatedAt:    org.UpdatedAt,
		Version:      org.Version,
	}
}

// Create creates a new organization
func (s *OrganizationService) Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error) {
	org, err := partner.NewOrganization(req.Name, partner.OrganizationType(req.Type))
	if err != nil {
		return nil, err
	}

	org.Email = req.Email
	org.Phone = req.Phone
	org.Notes = req.Notes
	for _, addr := range req.Addresses {
		org.AddAddress(addr)
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, org)

	response := ToOrganizationResponse(org)
	return &response, nil
}

// GetByID retrieves an organization by ID
func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// List retrieves organizations with filtering and pagination
func (s *OrganizationService) List(ctx context.Context, filter OrganizationListFilter) ([]OrganizationResponse, int64, error) {
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
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}

	orgs, total, err := s.orgRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrganizationResponse, 0, len(orgs))
	for idx := range orgs {
		responses = append(responses, ToOrganizationResponse(&orgs[idx]))
	}
	return responses, total, nil
}

// Update applies partial changes to an organization
func (s *OrganizationService) Update(ctx context.Context, id uuid.UUID, req UpdateOrganizationRequest) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := org.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		org.Email = *req.Email
	}
	if req.Phone != nil {
		org.Phone = *req.Phone
	}
	if req.Notes != nil {
		org.Notes = *req.Notes
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// AddAddress appends an address to an organization
func (s *OrganizationService) AddAddress(ctx context.Context, id uuid.UUID, addr partner.Address) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	org.AddAddress(addr)
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}

	response := ToOrganizationResponse(org)
	return &response, nil
}

// publishEvents publishes and clears the aggregate's pending events.
// Event delivery failures do not fail the business operation.
func (s *OrganizationService) publishEvents(ctx context.Context, org *partner.Organization) {
	if s.eventPublisher == nil {
		return
	}
	events := org.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	org.ClearDomainEvents()
}
