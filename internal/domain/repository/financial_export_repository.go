package repository

import "github.com/pataspro/petshop-api/internal/domain/entity"

// FinancialExportRepository define el puerto de persistencia para exports
// financieros.
type FinancialExportRepository interface {
	Create(rec entity.FinancialExportRecord) error
	Update(rec entity.FinancialExportRecord) error
	GetByID(id string) (*entity.FinancialExportRecord, error)
	ListByCompany(companyID string, limit, offset int) ([]entity.FinancialExportRecord, error)
}
