package postgres

import (
	"context"
	"fmt"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación del puerto CustomerRepository sobre PostgreSQL.
// El NIF se guarda como NULL cuando está vacío para que el índice único
// parcial (company_id, nif) no choque con consumidores finales.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, company_id, name, nif, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.CompanyID, customer.Name, nullIfEmpty(customer.NIF),
		customer.Email, customer.Phone, customer.Address,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `
		SELECT id, company_id, name, nif, email, phone, address, created_at, updated_at
		FROM customers WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByCompanyAndNIF busca un cliente por NIF dentro de la empresa.
func (r *CustomerRepo) GetByCompanyAndNIF(companyID, nif string) (*entity.Customer, error) {
	query := `
		SELECT id, company_id, name, nif, email, phone, address, created_at, updated_at
		FROM customers WHERE company_id = $1 AND nif = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, companyID, nif))
}

// Update actualiza un cliente existente.
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, nif = $3, email = $4, phone = $5, address = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Name, nullIfEmpty(customer.NIF),
		customer.Email, customer.Phone, customer.Address, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete elimina un cliente.
func (r *CustomerRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// ListByCompany devuelve los clientes de una empresa con paginación.
func (r *CustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	query := `
		SELECT id, company_id, name, nif, email, phone, address, created_at, updated_at
		FROM customers WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		var nif *string
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &nif, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.NIF = derefOrEmpty(nif)
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CustomerRepo) scanOne(row interface{ Scan(dest ...any) error }) (*entity.Customer, error) {
	var c entity.Customer
	var nif *string
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &nif, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	c.NIF = derefOrEmpty(nif)
	return &c, nil
}
