package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/application/usecase"
)

// ProductHandler maneja el CRUD de catálogo (productos y servicios).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create da de alta un artículo de catálogo.
// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	product, err := h.uc.Create(companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// GetByID obtiene un artículo.
// GET /api/products/:id
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	product, err := h.uc.GetByID(companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if product == nil {
		return notFound(c, "producto no encontrado")
	}
	return c.JSON(product)
}

// Update modifica un artículo. Afecta solo a líneas futuras; las facturas
// emitidas conservan sus cifras.
// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	product, err := h.uc.Update(companyID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	if product == nil {
		return notFound(c, "producto no encontrado")
	}
	return c.JSON(product)
}

// Deactivate retira un artículo del catálogo sin borrarlo.
// DELETE /api/products/:id
func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Deactivate(companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List devuelve el catálogo de la empresa.
// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "parámetros de paginación inválidos")
	}
	page.DefaultPage()
	products, err := h.uc.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}
