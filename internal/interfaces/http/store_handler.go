package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/application/usecase"
)

// StoreHandler maneja el CRUD de tiendas.
type StoreHandler struct {
	uc *usecase.StoreUseCase
}

// NewStoreHandler construye el handler.
func NewStoreHandler(uc *usecase.StoreUseCase) *StoreHandler {
	return &StoreHandler{uc: uc}
}

// Create da de alta una tienda.
// POST /api/stores
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateStoreRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	store, err := h.uc.Create(companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

// GetByID obtiene una tienda.
// GET /api/stores/:id
func (h *StoreHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	store, err := h.uc.GetByID(companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if store == nil {
		return notFound(c, "tienda no encontrada")
	}
	return c.JSON(store)
}

// Update modifica una tienda.
// PUT /api/stores/:id
func (h *StoreHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateStoreRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	store, err := h.uc.Update(companyID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	if store == nil {
		return notFound(c, "tienda no encontrada")
	}
	return c.JSON(store)
}

// Deactivate desactiva una tienda. Las tiendas nunca se borran: son ámbito
// de numeración fiscal.
// DELETE /api/stores/:id
func (h *StoreHandler) Deactivate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Deactivate(companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List devuelve las tiendas de la empresa.
// GET /api/stores
func (h *StoreHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "parámetros de paginación inválidos")
	}
	page.DefaultPage()
	stores, err := h.uc.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stores)
}
