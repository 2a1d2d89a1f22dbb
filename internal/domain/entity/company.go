package entity

import "time"

// Company representa una empresa/tenant del sistema (enfoque Portugal).
// Toda factura pertenece exactamente a una Company y una Store.
type Company struct {
	ID        string
	Name      string
	NIF       string // NIF portugués (9 dígitos con dígito de control)
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
