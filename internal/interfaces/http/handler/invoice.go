package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/kontor/backend/internal/application/billing"
)

// MaxInvoiceDocumentSize limits uploaded invoice documents to 10 MiB.
const MaxInvoiceDocumentSize = 10 << 20

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create a new invoice
// @Description  Create a standalone invoice. The invoice number is allocated
// @Description  from the yearly sequence at creation.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req billingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// CreateFromPlan godoc
// @ID           createInvoiceFromPlan
// @Summary      Create an invoice from billing plan items
// @Description  Invoice open billing plan installments of an order. Items that
// @Description  are already invoiced are skipped and reported in the response.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateInvoiceFromPlanRequest true "Plan items to invoice"
// @Success      201 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices/from-plan [post]
func (h *InvoiceHandler) CreateFromPlan(c *gin.Context) {
	var req billingapp.CreateInvoiceFromPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateFromPlan(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID godoc
// @ID           getInvoiceById
// @Summary      Get invoice by ID
// @Description  Retrieve an invoice by its ID
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Retrieve a paginated list of invoices with optional filtering
// @Tags         invoices
// @Produce      json
// @Param        search query string false "Search term (invoice number)"
// @Param        organization_id query string false "Organization ID" format(uuid)
// @Param        order_id query string false "Order ID" format(uuid)
// @Param        status query string false "Invoice status" Enums(draft, planned, invoiced, paid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter billingapp.InvoiceListFilter
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

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// MarkSent godoc
// @ID           markInvoiceSent
// @Summary      Mark an invoice as sent
// @Description  Transition a draft invoice to sent. An optional rendered
// @Description  document can be attached as multipart field "document" and is
// @Description  archived alongside the transition.
// @Tags         invoices
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        document formData file false "Rendered invoice document (PDF)"
// @Success      200 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices/{id}/send [post]
func (h *InvoiceHandler) MarkSent(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	document, err := h.readDocument(c, false)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.MarkSent(c.Request.Context(), invoiceID, document)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// ArchiveDocument godoc
// @ID           archiveInvoiceDocument
// @Summary      Archive an invoice document
// @Description  Store a rendered invoice document in the document archive and
// @Description  return its storage location
// @Tags         invoices
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        document formData file true "Rendered invoice document (PDF)"
// @Success      200 {object} APIResponse[billingapp.StoredDocument]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices/{id}/document [post]
func (h *InvoiceHandler) ArchiveDocument(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	document, err := h.readDocument(c, true)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stored, err := h.invoiceService.ArchiveDocument(c.Request.Context(), invoiceID, document)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stored)
}

// RecordPayment godoc
// @ID           recordInvoicePayment
// @Summary      Record a payment on an invoice
// @Description  Append a payment to the invoice. The invoice transitions to
// @Description  paid once the open amount is covered.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body billingapp.RecordPaymentRequest true "Payment details"
// @Success      200 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req billingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// AddItem godoc
// @ID           addInvoiceItem
// @Summary      Add a line to a draft invoice
// @Description  Append an item to an invoice that has not been sent yet
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body billingapp.InvoiceItemInput true "Invoice line"
// @Success      200 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req billingapp.InvoiceItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.AddItem(c.Request.Context(), invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RemoveItem godoc
// @ID           removeInvoiceItem
// @Summary      Remove a line from a draft invoice
// @Description  Remove an item from an invoice that has not been sent yet
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        item_id path string true "Invoice item ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /billing/invoices/{id}/items/{item_id} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	invoice, err := h.invoiceService.RemoveItem(c.Request.Context(), invoiceID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// readDocument reads the multipart "document" field, returning nil when the
// field is absent and not required.
func (h *InvoiceHandler) readDocument(c *gin.Context, required bool) ([]byte, error) {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		if !required {
			return nil, nil
		}
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, MaxInvoiceDocumentSize))
}
