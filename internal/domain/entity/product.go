package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o servicio vendible de la empresa.
// Para el núcleo fiscal es solo un input de lectura: nombre, precio y tipo de IVA.
type Product struct {
	ID        string
	CompanyID string
	SKU       string
	Name      string
	IsService bool // true = servicio (peluquería, consulta), false = producto físico
	Price     decimal.Decimal
	VATRate   decimal.Decimal // porcentaje [0,100]; en Portugal: 6, 13 o 23
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
