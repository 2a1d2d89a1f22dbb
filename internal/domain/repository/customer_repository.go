package repository

import "github.com/pataspro/petshop-api/internal/domain/entity"

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByCompanyAndNIF(companyID, nif string) (*entity.Customer, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
	Delete(id string) error
}
