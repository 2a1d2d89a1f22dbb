package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/application/usecase"
)

// CustomerHandler maneja el CRUD de clientes.
type CustomerHandler struct {
	uc *usecase.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *usecase.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// Create da de alta un cliente. El NIF es opcional (consumidor final).
// POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	customer, err := h.uc.Create(companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// GetByID obtiene un cliente.
// GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	customer, err := h.uc.GetByID(companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if customer == nil {
		return notFound(c, "cliente no encontrado")
	}
	return c.JSON(customer)
}

// Update modifica un cliente. El NIF solo puede fijarse si estaba vacío.
// PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	customer, err := h.uc.Update(companyID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	if customer == nil {
		return notFound(c, "cliente no encontrado")
	}
	return c.JSON(customer)
}

// Delete elimina un cliente.
// DELETE /api/customers/:id
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Delete(companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List devuelve los clientes de la empresa.
// GET /api/customers
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "parámetros de paginación inválidos")
	}
	page.DefaultPage()
	customers, err := h.uc.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(customers)
}
