package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

// StoreUseCase casos de uso CRUD para tiendas. Una tienda nueva arranca su
// propio ámbito de numeración fiscal; por eso nunca se borra, solo se
// desactiva.
type StoreUseCase struct {
	repo repository.StoreRepository
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(repo repository.StoreRepository) *StoreUseCase {
	return &StoreUseCase{repo: repo}
}

// Create crea una tienda activa de la empresa.
func (uc *StoreUseCase) Create(companyID string, in dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	store := &entity.Store{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// GetByID obtiene una tienda por ID dentro del ámbito de la empresa.
func (uc *StoreUseCase) GetByID(companyID, id string) (*dto.StoreResponse, error) {
	store, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store == nil || store.CompanyID != companyID {
		return nil, nil
	}
	return toStoreResponse(store), nil
}

// Update actualiza nombre/dirección/teléfono de la tienda.
func (uc *StoreUseCase) Update(companyID, id string, in dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	store, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store == nil || store.CompanyID != companyID {
		return nil, nil
	}
	if in.Name != "" {
		store.Name = in.Name
	}
	if in.Address != "" {
		store.Address = in.Address
	}
	if in.Phone != "" {
		store.Phone = in.Phone
	}
	store.UpdatedAt = time.Now()
	if err := uc.repo.Update(store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// Deactivate marca la tienda como inactiva (no acepta nuevas facturas).
func (uc *StoreUseCase) Deactivate(companyID, id string) error {
	store, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if store == nil || store.CompanyID != companyID {
		return domain.ErrNotFound
	}
	store.IsActive = false
	store.UpdatedAt = time.Now()
	return uc.repo.Update(store)
}

// ListByCompany lista las tiendas de la empresa con paginación.
func (uc *StoreUseCase) ListByCompany(companyID string, limit, offset int) ([]dto.StoreResponse, error) {
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStoreResponse(s))
	}
	return items, nil
}

func toStoreResponse(s *entity.Store) *dto.StoreResponse {
	return &dto.StoreResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
