package repository

import "github.com/pataspro/petshop-api/internal/domain/entity"

// CreditNoteRepository define el puerto de persistencia para notas de crédito.
type CreditNoteRepository interface {
	Create(rec entity.CreditNoteRecord) error
	Update(rec entity.CreditNoteRecord) error
	GetByID(id string) (*entity.CreditNoteRecord, error)
	ListByInvoice(invoiceID string) ([]entity.CreditNoteRecord, error)
}
