package postgres

import (
	"context"
	"fmt"

	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var _ repository.CreditNoteRepository = (*CreditNoteRepo)(nil)

// CreditNoteRepo implementación de CreditNoteRepository (usable con pool o tx).
type CreditNoteRepo struct {
	q Querier
}

// NewCreditNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditNoteRepository(q Querier) *CreditNoteRepo {
	return &CreditNoteRepo{q: q}
}

// Create persiste una nota de crédito.
func (r *CreditNoteRepo) Create(rec entity.CreditNoteRecord) error {
	query := `
		INSERT INTO credit_notes (id, invoice_id, amount, reason, issued_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.InvoiceID, rec.Amount, nullIfEmpty(rec.Reason),
		rec.IssuedAt, rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credit note: %w", err)
	}
	return nil
}

// Update persiste los campos mutables (importe, motivo, emisión).
func (r *CreditNoteRepo) Update(rec entity.CreditNoteRecord) error {
	query := `
		UPDATE credit_notes SET amount = $2, reason = $3, issued_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.Amount, nullIfEmpty(rec.Reason), rec.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("update credit note: %w", err)
	}
	return nil
}

// GetByID obtiene una nota de crédito por ID.
func (r *CreditNoteRepo) GetByID(id string) (*entity.CreditNoteRecord, error) {
	query := `
		SELECT id, invoice_id, amount, reason, issued_at, created_by, created_at
		FROM credit_notes WHERE id = $1`
	var rec entity.CreditNoteRecord
	var reason *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.InvoiceID, &rec.Amount, &reason,
		&rec.IssuedAt, &rec.CreatedBy, &rec.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit note: %w", err)
	}
	rec.Reason = derefOrEmpty(reason)
	return &rec, nil
}

// ListByInvoice devuelve las notas de crédito de una factura.
func (r *CreditNoteRepo) ListByInvoice(invoiceID string) ([]entity.CreditNoteRecord, error) {
	query := `
		SELECT id, invoice_id, amount, reason, issued_at, created_by, created_at
		FROM credit_notes WHERE invoice_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list credit notes: %w", err)
	}
	defer rows.Close()

	var list []entity.CreditNoteRecord
	for rows.Next() {
		var rec entity.CreditNoteRecord
		var reason *string
		if err := rows.Scan(&rec.ID, &rec.InvoiceID, &rec.Amount, &reason, &rec.IssuedAt, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		rec.Reason = derefOrEmpty(reason)
		list = append(list, rec)
	}
	return list, rows.Err()
}
