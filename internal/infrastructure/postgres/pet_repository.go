package postgres

import (
	"context"
	"fmt"

	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var _ repository.PetRepository = (*PetRepo)(nil)

// PetRepo implementación del puerto PetRepository sobre PostgreSQL.
type PetRepo struct {
	q Querier
}

// NewPetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPetRepository(q Querier) *PetRepo {
	return &PetRepo{q: q}
}

// Create persiste una mascota.
func (r *PetRepo) Create(pet *entity.Pet) error {
	query := `
		INSERT INTO pets (id, company_id, customer_id, name, species, breed, birth_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		pet.ID, pet.CompanyID, pet.CustomerID, pet.Name, pet.Species,
		pet.Breed, pet.BirthDate, pet.Notes, pet.CreatedAt, pet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pet: %w", err)
	}
	return nil
}

// GetByID obtiene una mascota por ID.
func (r *PetRepo) GetByID(id string) (*entity.Pet, error) {
	query := `
		SELECT id, company_id, customer_id, name, species, breed, birth_date, notes, created_at, updated_at
		FROM pets WHERE id = $1`
	var p entity.Pet
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.CompanyID, &p.CustomerID, &p.Name, &p.Species,
		&p.Breed, &p.BirthDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pet: %w", err)
	}
	return &p, nil
}

// Update actualiza una mascota existente.
func (r *PetRepo) Update(pet *entity.Pet) error {
	query := `
		UPDATE pets SET name = $2, species = $3, breed = $4, birth_date = $5, notes = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		pet.ID, pet.Name, pet.Species, pet.Breed, pet.BirthDate, pet.Notes, pet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	return nil
}

// Delete elimina el registro de la mascota.
func (r *PetRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	return nil
}

// ListByCustomer devuelve las mascotas de un cliente.
func (r *PetRepo) ListByCustomer(customerID string) ([]*entity.Pet, error) {
	query := `
		SELECT id, company_id, customer_id, name, species, breed, birth_date, notes, created_at, updated_at
		FROM pets WHERE customer_id = $1 ORDER BY name`
	rows, err := r.q.Query(context.Background(), query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list pets by customer: %w", err)
	}
	defer rows.Close()
	return scanPets(rows)
}

// ListByCompany devuelve las mascotas de la empresa con paginación.
func (r *PetRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Pet, error) {
	query := `
		SELECT id, company_id, customer_id, name, species, breed, birth_date, notes, created_at, updated_at
		FROM pets WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()
	return scanPets(rows)
}

func scanPets(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*entity.Pet, error) {
	var list []*entity.Pet
	for rows.Next() {
		var p entity.Pet
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.CustomerID, &p.Name, &p.Species, &p.Breed, &p.BirthDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pet: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
