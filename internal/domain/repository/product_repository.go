package repository

import "github.com/pataspro/petshop-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// El núcleo fiscal lo usa solo en lectura (precio y tipo de IVA de las líneas).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
