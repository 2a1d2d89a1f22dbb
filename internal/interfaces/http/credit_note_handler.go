package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/application/dto"
)

// CreditNoteHandler maneja notas de crédito (protegido).
type CreditNoteHandler struct {
	uc *billing.CreditNoteUseCase
}

// NewCreditNoteHandler construye el handler.
func NewCreditNoteHandler(uc *billing.CreditNoteUseCase) *CreditNoteHandler {
	return &CreditNoteHandler{uc: uc}
}

// Create crea una nota de crédito en borrador contra una factura.
// POST /api/credit-notes
func (h *CreditNoteHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateCreditNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	note, err := h.uc.Create(c.Context(), companyID, in, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// Issue emite la nota de crédito. Si cubre el total pendiente de una factura
// pagada, la factura pasa a devuelta.
// POST /api/credit-notes/:id/issue
func (h *CreditNoteHandler) Issue(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	note, err := h.uc.Issue(c.Context(), companyID, c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(note)
}

// GetByID obtiene una nota de crédito.
// GET /api/credit-notes/:id
func (h *CreditNoteHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	note, err := h.uc.Get(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(note)
}

// ListByInvoice devuelve las notas de crédito de una factura.
// GET /api/invoices/:id/credit-notes
func (h *CreditNoteHandler) ListByInvoice(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	notes, err := h.uc.ListByInvoice(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(notes)
}
