package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/application/dto"
)

// InvoiceHandler maneja el ciclo de vida de facturas (protegido).
type InvoiceHandler struct {
	lifecycle *billing.InvoiceLifecycleUseCase
	pdf       *billing.InvoicePDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(lifecycle *billing.InvoiceLifecycleUseCase, pdf *billing.InvoicePDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{lifecycle: lifecycle, pdf: pdf}
}

// CreateDraft crea un borrador de factura.
// POST /api/invoices
func (h *InvoiceHandler) CreateDraft(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateDraftRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	invoice, err := h.lifecycle.CreateDraft(c.Context(), companyID, in, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetByID obtiene una factura.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	invoice, err := h.lifecycle.GetInvoice(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// List devuelve las facturas de la empresa con paginación.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "parámetros de paginación inválidos")
	}
	invoices, err := h.lifecycle.ListInvoices(c.Context(), companyID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoices)
}

// Issue emite el borrador: asigna número fiscal y congela el documento.
// POST /api/invoices/:id/issue
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	invoice, err := h.lifecycle.Issue(c.Context(), companyID, c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// MarkAsPaid registra el pago de una factura emitida.
// POST /api/invoices/:id/pay
func (h *InvoiceHandler) MarkAsPaid(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.MarkPaidRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	invoice, err := h.lifecycle.MarkAsPaid(c.Context(), companyID, c.Params("id"), in, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// Void anula una factura en borrador o emitida sin pagar.
// POST /api/invoices/:id/void
func (h *InvoiceHandler) Void(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.VoidRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	invoice, err := h.lifecycle.Void(c.Context(), companyID, c.Params("id"), in, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// DownloadPDF devuelve la representación imprimible de una factura emitida.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	content, filename, err := h.pdf.Generate(c.Context(), companyID, c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}
