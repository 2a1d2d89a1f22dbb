package entity

import "time"

// Customer representa un cliente de la empresa (dueño de mascotas y
// comprador en facturación).
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	NIF       string // NIF del cliente; opcional para consumidor final
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
