package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Las líneas se guardan embebidas como JSONB en la propia fila: la factura
// es el agregado completo, no una cabecera con tabla de detalle.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, store_id, number, buyer_customer_id, status,
	lines, subtotal, vat_total, total, issued_at, paid_at, created_at, updated_at`

// Create persiste una factura nueva.
func (r *InvoiceRepo) Create(rec entity.InvoiceRecord) error {
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return fmt.Errorf("marshal invoice lines: %w", err)
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(context.Background(), query,
		rec.ID, rec.CompanyID, rec.StoreID, rec.Number,
		nullIfEmpty(rec.BuyerCustomerID), string(rec.Status),
		lines, rec.Subtotal, rec.VATTotal, rec.Total,
		rec.IssuedAt, rec.PaidAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update persiste los campos mutables de la factura. La inmutabilidad
// post-emisión la garantiza el agregado, no este adaptador.
func (r *InvoiceRepo) Update(rec entity.InvoiceRecord) error {
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return fmt.Errorf("marshal invoice lines: %w", err)
	}
	query := `
		UPDATE invoices SET number = $2, buyer_customer_id = $3, status = $4,
			lines = $5, subtotal = $6, vat_total = $7, total = $8,
			issued_at = $9, paid_at = $10, updated_at = $11
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		rec.ID, rec.Number, nullIfEmpty(rec.BuyerCustomerID), string(rec.Status),
		lines, rec.Subtotal, rec.VATTotal, rec.Total,
		rec.IssuedAt, rec.PaidAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByNumber busca por (empresa, número): el chequeo defensivo de unicidad
// que hace la emisión tras pedir número al generador.
func (r *InvoiceRepo) GetByNumber(companyID, number string) (*entity.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE company_id = $1 AND number = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, companyID, number))
}

// ListByCompany devuelve las facturas de una empresa con paginación.
func (r *InvoiceRepo) ListByCompany(companyID string, limit, offset int) ([]entity.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListByPeriod devuelve facturas emitidas dentro del período (extremos
// inclusivos; nil = sin límite). Los borradores quedan fuera por no tener
// fecha de emisión.
func (r *InvoiceRepo) ListByPeriod(companyID string, from, to *time.Time) ([]entity.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE company_id = $1
		  AND issued_at IS NOT NULL
		  AND ($2::timestamptz IS NULL OR issued_at >= $2)
		  AND ($3::timestamptz IS NULL OR issued_at <= $3)
		ORDER BY issued_at`
	rows, err := r.q.Query(context.Background(), query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list invoices by period: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *InvoiceRepo) scanOne(row interface{ Scan(dest ...any) error }) (*entity.InvoiceRecord, error) {
	rec, err := scanInvoice(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return rec, nil
}

func (r *InvoiceRepo) scanAll(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]entity.InvoiceRecord, error) {
	var list []entity.InvoiceRecord
	for rows.Next() {
		rec, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

func scanInvoice(row interface{ Scan(dest ...any) error }) (*entity.InvoiceRecord, error) {
	var rec entity.InvoiceRecord
	var buyer *string
	var status string
	var lines []byte
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.StoreID, &rec.Number, &buyer, &status,
		&lines, &rec.Subtotal, &rec.VATTotal, &rec.Total,
		&rec.IssuedAt, &rec.PaidAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.BuyerCustomerID = derefOrEmpty(buyer)
	rec.Status = entity.InvoiceStatus(status)
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &rec.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal invoice lines: %w", err)
		}
	}
	return &rec, nil
}
