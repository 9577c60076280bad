package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partnerapp "github.com/kontor/backend/internal/application/partner"
	"github.com/kontor/backend/internal/domain/partner"
)

// OrganizationHandler handles organization-related API endpoints
type OrganizationHandler struct {
	BaseHandler
	organizationService *partnerapp.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(organizationService *partnerapp.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		organizationService: organizationService,
	}
}

// AddAddressRequest represents a request to add an address to an organization
// @Description Request body for adding an organization address
type AddAddressRequest struct {
	Label      string `json:"label" binding:"max=50" example:"billing"`
	Street     string `json:"street" binding:"required,max=200" example:"Musterstrasse 12"`
	PostalCode string `json:"postal_code" binding:"required,max=20" example:"10115"`
	City       string `json:"city" binding:"required,max=100" example:"Berlin"`
	Country    string `json:"country" binding:"max=100" example:"Germany"`
}

// Create godoc
// @ID           createOrganization
// @Summary      Create a new organization
// @Description  Create a new customer or supplier organization
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateOrganizationRequest true "Organization creation request"
// @Success      201 {object} APIResponse[partnerapp.OrganizationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /partner/organizations [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req partnerapp.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	org, err := h.organizationService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, org)
}

// GetByID godoc
// @ID           getOrganizationById
// @Summary      Get organization by ID
// @Description  Retrieve an organization by its ID
// @Tags         organizations
// @Produce      json
// @Param        id path string true "Organization ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.OrganizationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /partner/organizations/{id} [get]
func (h *OrganizationHandler) GetByID(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid organization ID format")
		return
	}

	org, err := h.organizationService.GetByID(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, org)
}

// List godoc
// @ID           listOrganizations
// @Summary      List organizations
// @Description  Retrieve a paginated list of organizations with optional filtering
// @Tags         organizations
// @Produce      json
// @Param        search query string false "Search term (name, email)"
// @Param        type query string false "Organization type" Enums(customer, supplier, internal)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]partnerapp.OrganizationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /partner/organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	var filter partnerapp.OrganizationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orgs, total, err := h.organizationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orgs, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateOrganization
// @Summary      Update an organization
// @Description  Update an existing organization's details. Renaming changes the
// @Description  derived customer code for future orders only.
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        id path string true "Organization ID" format(uuid)
// @Param        request body partnerapp.UpdateOrganizationRequest true "Organization update request"
// @Success      200 {object} APIResponse[partnerapp.OrganizationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /partner/organizations/{id} [put]
func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid organization ID format")
		return
	}

	var req partnerapp.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	org, err := h.organizationService.Update(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, org)
}

// AddAddress godoc
// @ID           addOrganizationAddress
// @Summary      Add an address to an organization
// @Description  Append an address to the organization's address list
// @Tags         organizations
// @Accept       json
// @Produce      json
// @Param        id path string true "Organization ID" format(uuid)
// @Param        request body AddAddressRequest true "Address to add"
// @Success      200 {object} APIResponse[partnerapp.OrganizationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /partner/organizations/{id}/addresses [post]
func (h *OrganizationHandler) AddAddress(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid organization ID format")
		return
	}

	var req AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	addr := partner.Address{
		Label:      req.Label,
		Street:     req.Street,
		PostalCode: req.PostalCode,
		City:       req.City,
		Country:    req.Country,
	}

	org, err := h.organizationService.AddAddress(c.Request.Context(), orgID, addr)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, org)
}
