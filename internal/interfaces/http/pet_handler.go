package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/application/usecase"
)

// PetHandler maneja el CRUD de mascotas.
type PetHandler struct {
	uc *usecase.PetUseCase
}

// NewPetHandler construye el handler.
func NewPetHandler(uc *usecase.PetUseCase) *PetHandler {
	return &PetHandler{uc: uc}
}

// Create registra una mascota asociada a un cliente.
// POST /api/pets
func (h *PetHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePetRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	pet, err := h.uc.Create(companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pet)
}

// GetByID obtiene una mascota.
// GET /api/pets/:id
func (h *PetHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	pet, err := h.uc.GetByID(companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if pet == nil {
		return notFound(c, "mascota no encontrada")
	}
	return c.JSON(pet)
}

// Update modifica una mascota. El dueño no cambia por esta vía.
// PUT /api/pets/:id
func (h *PetHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePetRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	pet, err := h.uc.Update(companyID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	if pet == nil {
		return notFound(c, "mascota no encontrada")
	}
	return c.JSON(pet)
}

// Delete elimina una mascota.
// DELETE /api/pets/:id
func (h *PetHandler) Delete(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Delete(companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List devuelve mascotas; con ?customer_id= filtra por dueño.
// GET /api/pets
func (h *PetHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		pets, err := h.uc.ListByCustomer(companyID, customerID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(pets)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "parámetros de paginación inválidos")
	}
	page.DefaultPage()
	pets, err := h.uc.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(pets)
}
