package postgres

import (
	"context"
	"fmt"

	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación del puerto StoreRepository sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// Create persiste una nueva tienda.
func (r *StoreRepo) Create(store *entity.Store) error {
	query := `
		INSERT INTO stores (id, company_id, name, address, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		store.ID, store.CompanyID, store.Name, store.Address, store.Phone,
		store.IsActive, store.CreatedAt, store.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

// GetByID obtiene una tienda por ID.
func (r *StoreRepo) GetByID(id string) (*entity.Store, error) {
	query := `
		SELECT id, company_id, name, address, phone, is_active, created_at, updated_at
		FROM stores WHERE id = $1`
	var s entity.Store
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.CompanyID, &s.Name, &s.Address, &s.Phone, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// Update actualiza una tienda existente.
func (r *StoreRepo) Update(store *entity.Store) error {
	query := `
		UPDATE stores SET name = $2, address = $3, phone = $4, is_active = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		store.ID, store.Name, store.Address, store.Phone, store.IsActive, store.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	return nil
}

// ListByCompany devuelve las tiendas de una empresa con paginación.
func (r *StoreRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Store, error) {
	query := `
		SELECT id, company_id, name, address, phone, is_active, created_at, updated_at
		FROM stores WHERE company_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var list []*entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Address, &s.Phone, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
