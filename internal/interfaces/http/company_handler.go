package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/application/usecase"
)

// CompanyHandler maneja el CRUD de empresas.
type CompanyHandler struct {
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler construye el handler.
func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Create da de alta una empresa (valida el NIF portugués).
// POST /api/companies
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	company, err := h.uc.Create(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

// GetByID devuelve la empresa del token. Un usuario solo ve su propia empresa.
// GET /api/companies/me
func (h *CompanyHandler) GetOwn(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	company, err := h.uc.GetByID(companyID)
	if err != nil {
		return writeError(c, err)
	}
	if company == nil {
		return notFound(c, "empresa no encontrada")
	}
	return c.JSON(company)
}

// Update modifica los datos de contacto de la empresa. El NIF nunca cambia.
// PUT /api/companies/me
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	company, err := h.uc.Update(companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(company)
}
