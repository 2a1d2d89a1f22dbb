package repository

import "github.com/pataspro/petshop-api/internal/domain/entity"

// PetRepository define el puerto de persistencia para Pet.
type PetRepository interface {
	Create(pet *entity.Pet) error
	GetByID(id string) (*entity.Pet, error)
	ListByCustomer(customerID string) ([]*entity.Pet, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Pet, error)
	Update(pet *entity.Pet) error
	Delete(id string) error
}
