package entity

import "time"

// Store representa una tienda física de la empresa. Cada tienda tiene su
// propio ámbito de numeración fiscal (empresa, tienda, año).
type Store struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
