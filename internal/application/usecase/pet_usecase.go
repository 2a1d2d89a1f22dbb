package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var validSpecies = map[string]bool{
	entity.SpeciesDog:    true,
	entity.SpeciesCat:    true,
	entity.SpeciesBird:   true,
	entity.SpeciesRodent: true,
	entity.SpeciesReptil: true,
	entity.SpeciesOther:  true,
}

// PetUseCase casos de uso CRUD para mascotas. Toda mascota pertenece a un
// cliente de la misma empresa.
type PetUseCase struct {
	repo      repository.PetRepository
	customers repository.CustomerRepository
}

// NewPetUseCase construye el caso de uso.
func NewPetUseCase(repo repository.PetRepository, customers repository.CustomerRepository) *PetUseCase {
	return &PetUseCase{repo: repo, customers: customers}
}

// Create registra una mascota de un cliente de la empresa.
func (uc *PetUseCase) Create(companyID string, in dto.CreatePetRequest) (*dto.PetResponse, error) {
	if in.Name == "" || in.CustomerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !validSpecies[in.Species] {
		return nil, domain.ErrInvalidInput
	}
	owner, err := uc.customers.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	pet := &entity.Pet{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		Name:       in.Name,
		Species:    in.Species,
		Breed:      in.Breed,
		BirthDate:  in.BirthDate,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(pet); err != nil {
		return nil, err
	}
	return toPetResponse(pet), nil
}

// GetByID obtiene una mascota por ID dentro del ámbito de la empresa.
func (uc *PetUseCase) GetByID(companyID, id string) (*dto.PetResponse, error) {
	pet, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if pet == nil || pet.CompanyID != companyID {
		return nil, nil
	}
	return toPetResponse(pet), nil
}

// Update actualiza los datos de la mascota. El dueño no cambia por esta vía.
func (uc *PetUseCase) Update(companyID, id string, in dto.CreatePetRequest) (*dto.PetResponse, error) {
	pet, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if pet == nil || pet.CompanyID != companyID {
		return nil, nil
	}
	if in.Name != "" {
		pet.Name = in.Name
	}
	if in.Species != "" {
		if !validSpecies[in.Species] {
			return nil, domain.ErrInvalidInput
		}
		pet.Species = in.Species
	}
	if in.Breed != "" {
		pet.Breed = in.Breed
	}
	if in.BirthDate != nil {
		pet.BirthDate = in.BirthDate
	}
	if in.Notes != "" {
		pet.Notes = in.Notes
	}
	pet.UpdatedAt = time.Now()
	if err := uc.repo.Update(pet); err != nil {
		return nil, err
	}
	return toPetResponse(pet), nil
}

// Delete elimina el registro de la mascota.
func (uc *PetUseCase) Delete(companyID, id string) error {
	pet, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if pet == nil || pet.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

// ListByCustomer lista las mascotas de un cliente de la empresa.
func (uc *PetUseCase) ListByCustomer(companyID, customerID string) ([]dto.PetResponse, error) {
	owner, err := uc.customers.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.repo.ListByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PetResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPetResponse(p))
	}
	return items, nil
}

// ListByCompany lista las mascotas de la empresa con paginación.
func (uc *PetUseCase) ListByCompany(companyID string, limit, offset int) ([]dto.PetResponse, error) {
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PetResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPetResponse(p))
	}
	return items, nil
}

func toPetResponse(p *entity.Pet) *dto.PetResponse {
	return &dto.PetResponse{
		ID:         p.ID,
		CompanyID:  p.CompanyID,
		CustomerID: p.CustomerID,
		Name:       p.Name,
		Species:    p.Species,
		Breed:      p.Breed,
		BirthDate:  p.BirthDate,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
