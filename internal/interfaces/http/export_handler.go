package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/application/dto"
)

// ExportHandler maneja exports financieros (protegido; solo contable y dueño).
type ExportHandler struct {
	uc *billing.ExportUseCase
}

// NewExportHandler construye el handler.
func NewExportHandler(uc *billing.ExportUseCase) *ExportHandler {
	return &ExportHandler{uc: uc}
}

// Create genera un export del período en el formato pedido.
// POST /api/exports
func (h *ExportHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateExportRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	exp, err := h.uc.Create(c.Context(), companyID, in, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(exp)
}

// GetByID obtiene un export.
// GET /api/exports/:id
func (h *ExportHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	exp, err := h.uc.Get(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(exp)
}

// List devuelve los exports de la empresa.
// GET /api/exports
func (h *ExportHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "parámetros de paginación inválidos")
	}
	exports, err := h.uc.List(c.Context(), companyID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(exports)
}
