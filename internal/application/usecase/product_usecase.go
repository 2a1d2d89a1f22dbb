package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos y servicios del catálogo.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// validVATRate acepta los tipos portugueses: 0 (exento), 6, 13 y 23.
func validVATRate(rate decimal.Decimal) bool {
	for _, v := range []int64{0, 6, 13, 23} {
		if rate.Equal(decimal.NewFromInt(v)) {
			return true
		}
	}
	return false
}

// Create crea un producto o servicio. Devuelve domain.ErrDuplicate si la
// empresa ya tiene un producto con ese SKU.
func (uc *ProductUseCase) Create(companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" || in.SKU == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || !validVATRate(in.VATRate) {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCompanyAndSKU(companyID, in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SKU:       in.SKU,
		Name:      in.Name,
		IsService: in.IsService,
		Price:     in.Price,
		VATRate:   in.VATRate,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID dentro del ámbito de la empresa.
func (uc *ProductUseCase) GetByID(companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, precio y tipo de IVA. El cambio solo afecta a
// líneas futuras: las facturas emitidas congelan precio e IVA por línea.
func (uc *ProductUseCase) Update(companyID, id string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, nil
	}
	if in.Name != "" {
		product.Name = in.Name
	}
	if !in.Price.IsZero() {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = in.Price
	}
	if !in.VATRate.IsZero() {
		if !validVATRate(in.VATRate) {
			return nil, domain.ErrInvalidInput
		}
		product.VATRate = in.VATRate
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Deactivate retira el producto del catálogo sin borrarlo: las líneas de
// facturas emitidas siguen referenciándolo.
func (uc *ProductUseCase) Deactivate(companyID, id string) error {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil || product.CompanyID != companyID {
		return domain.ErrNotFound
	}
	product.IsActive = false
	product.UpdatedAt = time.Now()
	return uc.repo.Update(product)
}

// ListByCompany lista el catálogo de la empresa con paginación.
func (uc *ProductUseCase) ListByCompany(companyID string, limit, offset int) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		SKU:       p.SKU,
		Name:      p.Name,
		IsService: p.IsService,
		Price:     p.Price,
		VATRate:   p.VATRate,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
