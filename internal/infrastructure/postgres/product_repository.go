package postgres

import (
	"context"
	"fmt"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL.
// price y vat_rate son NUMERIC; el codec pgx-shopspring-decimal los mapea a
// decimal.Decimal sin pasar por float.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto o servicio del catálogo.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (id, company_id, sku, name, is_service, price, vat_rate, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.CompanyID, product.SKU, product.Name, product.IsService,
		product.Price, product.VATRate, product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `
		SELECT id, company_id, sku, name, is_service, price, vat_rate, is_active, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.IsService,
		&p.Price, &p.VATRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetByCompanyAndSKU busca un producto por SKU dentro de la empresa.
func (r *ProductRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error) {
	query := `
		SELECT id, company_id, sku, name, is_service, price, vat_rate, is_active, created_at, updated_at
		FROM products WHERE company_id = $1 AND sku = $2`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, companyID, sku).Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.IsService,
		&p.Price, &p.VATRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by SKU: %w", err)
	}
	return &p, nil
}

// Update actualiza un producto existente.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, is_service = $3, price = $4, vat_rate = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.IsService, product.Price,
		product.VATRate, product.IsActive, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete elimina un producto. El catálogo en uso se desactiva, no se borra;
// Delete existe para altas erróneas sin referencias.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// ListByCompany devuelve el catálogo de una empresa con paginación.
func (r *ProductRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT id, company_id, sku, name, is_service, price, vat_rate, is_active, created_at, updated_at
		FROM products WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.IsService, &p.Price, &p.VATRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
