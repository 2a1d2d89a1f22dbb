package repository

import "github.com/pataspro/petshop-api/internal/domain/entity"

// TransactionRepository define el puerto de persistencia para transacciones
// de punto de venta.
type TransactionRepository interface {
	Create(rec entity.TransactionRecord) error
	Update(rec entity.TransactionRecord) error
	GetByID(id string) (*entity.TransactionRecord, error)
	// ListByInvoice devuelve las transacciones ligadas a una factura; la
	// anulación de la factura consulta aquí si alguna está liquidada.
	ListByInvoice(invoiceID string) ([]entity.TransactionRecord, error)
}
