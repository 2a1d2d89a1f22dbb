package postgres

import (
	"context"
	"fmt"

	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var _ repository.FinancialExportRepository = (*FinancialExportRepo)(nil)

// FinancialExportRepo implementación de FinancialExportRepository.
type FinancialExportRepo struct {
	q Querier
}

// NewFinancialExportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFinancialExportRepository(q Querier) *FinancialExportRepo {
	return &FinancialExportRepo{q: q}
}

// Create persiste un export pendiente de generar.
func (r *FinancialExportRepo) Create(rec entity.FinancialExportRecord) error {
	query := `
		INSERT INTO financial_exports (id, company_id, period_start, period_end, format, file_path, sftp_reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.CompanyID, rec.PeriodStart, rec.PeriodEnd, string(rec.Format),
		nullIfEmpty(rec.FilePath), nullIfEmpty(rec.SFTPReference),
		rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

// Update fija la ubicación generada.
func (r *FinancialExportRepo) Update(rec entity.FinancialExportRecord) error {
	query := `
		UPDATE financial_exports SET file_path = $2, sftp_reference = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, nullIfEmpty(rec.FilePath), nullIfEmpty(rec.SFTPReference),
	)
	if err != nil {
		return fmt.Errorf("update export: %w", err)
	}
	return nil
}

// GetByID obtiene un export por ID.
func (r *FinancialExportRepo) GetByID(id string) (*entity.FinancialExportRecord, error) {
	query := `
		SELECT id, company_id, period_start, period_end, format, file_path, sftp_reference, created_by, created_at
		FROM financial_exports WHERE id = $1`
	rec, err := scanExport(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get export: %w", err)
	}
	return rec, nil
}

// ListByCompany devuelve los exports de una empresa con paginación.
func (r *FinancialExportRepo) ListByCompany(companyID string, limit, offset int) ([]entity.FinancialExportRecord, error) {
	query := `
		SELECT id, company_id, period_start, period_end, format, file_path, sftp_reference, created_by, created_at
		FROM financial_exports WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var list []entity.FinancialExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

func scanExport(row interface{ Scan(dest ...any) error }) (*entity.FinancialExportRecord, error) {
	var rec entity.FinancialExportRecord
	var format string
	var filePath, sftpRef *string
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.PeriodStart, &rec.PeriodEnd, &format,
		&filePath, &sftpRef, &rec.CreatedBy, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Format = entity.ExportFormat(format)
	rec.FilePath = derefOrEmpty(filePath)
	rec.SFTPReference = derefOrEmpty(sftpRef)
	return &rec, nil
}
