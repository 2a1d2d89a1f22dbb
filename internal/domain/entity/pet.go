package entity

import "time"

// Especies soportadas por el catálogo (coincide con el CHECK de la tabla pets).
const (
	SpeciesDog    = "dog"
	SpeciesCat    = "cat"
	SpeciesBird   = "bird"
	SpeciesRodent = "rodent"
	SpeciesReptil = "reptile"
	SpeciesOther  = "other"
)

// Pet representa una mascota registrada de un cliente.
type Pet struct {
	ID         string
	CompanyID  string
	CustomerID string
	Name       string
	Species    string // ver constantes Species*
	Breed      string
	BirthDate  *time.Time // nil = desconocida
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
