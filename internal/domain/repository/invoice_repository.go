package repository

import (
	"time"

	"github.com/pataspro/petshop-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas.
// Trabaja con la forma plana (InvoiceRecord); la rehidratación al agregado
// la hace el caso de uso con entity.RehydrateInvoice.
type InvoiceRepository interface {
	Create(rec entity.InvoiceRecord) error
	// Update persiste todos los campos mutables del registro. La inmutabilidad
	// post-emisión la garantiza el agregado, no este puerto.
	Update(rec entity.InvoiceRecord) error
	GetByID(id string) (*entity.InvoiceRecord, error)
	// GetByNumber busca por (número, empresa): es el chequeo defensivo de
	// unicidad tras generar un número secuencial.
	GetByNumber(companyID, number string) (*entity.InvoiceRecord, error)
	ListByCompany(companyID string, limit, offset int) ([]entity.InvoiceRecord, error)
	// ListByPeriod devuelve las facturas de la empresa con fecha de emisión
	// dentro del período (extremos inclusivos; nil = sin límite).
	ListByPeriod(companyID string, from, to *time.Time) ([]entity.InvoiceRecord, error)
}
