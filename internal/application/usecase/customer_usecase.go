package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
	"github.com/pataspro/petshop-api/pkg/fiscal"
)

// CustomerUseCase casos de uso CRUD para clientes. El NIF del cliente es
// opcional (consumidor final), pero si viene debe pasar el dígito de control.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un cliente. Devuelve domain.ErrDuplicate si la empresa ya
// tiene un cliente con ese NIF.
func (uc *CustomerUseCase) Create(companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.NIF != "" {
		if err := fiscal.ValidateNIF(in.NIF); err != nil {
			return nil, err
		}
		existing, _ := uc.repo.GetByCompanyAndNIF(companyID, in.NIF)
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		NIF:       in.NIF,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetByID obtiene un cliente por ID dentro del ámbito de la empresa.
func (uc *CustomerUseCase) GetByID(companyID, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, nil
	}
	return toCustomerResponse(customer), nil
}

// Update actualiza los datos del cliente. El NIF solo se fija si estaba
// vacío (identificar tarde a un consumidor final); nunca se cambia uno
// existente.
func (uc *CustomerUseCase) Update(companyID, id string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, nil
	}
	if in.NIF != "" && customer.NIF == "" {
		if err := fiscal.ValidateNIF(in.NIF); err != nil {
			return nil, err
		}
		customer.NIF = in.NIF
	}
	if in.Name != "" {
		customer.Name = in.Name
	}
	if in.Email != "" {
		customer.Email = in.Email
	}
	if in.Phone != "" {
		customer.Phone = in.Phone
	}
	if in.Address != "" {
		customer.Address = in.Address
	}
	customer.UpdatedAt = time.Now()
	if err := uc.repo.Update(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Delete elimina un cliente del ámbito de la empresa.
func (uc *CustomerUseCase) Delete(companyID, id string) error {
	customer, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if customer == nil || customer.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

// ListByCompany lista los clientes de la empresa con paginación.
func (uc *CustomerUseCase) ListByCompany(companyID string, limit, offset int) (*dto.CustomerListResponse, error) {
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCustomerResponse(c))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		NIF:       c.NIF,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
