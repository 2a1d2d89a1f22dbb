package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/application/dto"
)

// TransactionHandler maneja transacciones de punto de venta (protegido).
type TransactionHandler struct {
	uc *billing.TransactionUseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *billing.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// Create registra una transacción ligada a una factura.
// POST /api/transactions
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	tx, err := h.uc.Create(c.Context(), companyID, in, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tx)
}

// MarkPaid liquida manualmente una transacción pendiente.
// POST /api/transactions/:id/pay
func (h *TransactionHandler) MarkPaid(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	tx, err := h.uc.MarkPaidManual(c.Context(), companyID, c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tx)
}

// Refund marca como devuelta una transacción liquidada.
// POST /api/transactions/:id/refund
func (h *TransactionHandler) Refund(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	tx, err := h.uc.Refund(c.Context(), companyID, c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tx)
}

// GetByID obtiene una transacción.
// GET /api/transactions/:id
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	tx, err := h.uc.Get(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tx)
}

// ListByInvoice devuelve las transacciones ligadas a una factura.
// GET /api/invoices/:id/transactions
func (h *TransactionHandler) ListByInvoice(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	txs, err := h.uc.ListByInvoice(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(txs)
}
