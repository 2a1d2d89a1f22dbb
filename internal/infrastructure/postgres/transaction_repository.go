package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación de TransactionRepository (usable con pool o
// tx). Las líneas van embebidas como JSONB, igual que en las facturas.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste una transacción de punto de venta.
func (r *TransactionRepo) Create(rec entity.TransactionRecord) error {
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return fmt.Errorf("marshal transaction lines: %w", err)
	}
	query := `
		INSERT INTO transactions (id, store_id, invoice_id, lines, total_amount, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(context.Background(), query,
		rec.ID, rec.StoreID, rec.InvoiceID, lines,
		rec.TotalAmount, string(rec.PaymentStatus), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Update persiste el estado de liquidación.
func (r *TransactionRepo) Update(rec entity.TransactionRecord) error {
	query := `
		UPDATE transactions SET payment_status = $2, updated_at = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, string(rec.PaymentStatus), rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID.
func (r *TransactionRepo) GetByID(id string) (*entity.TransactionRecord, error) {
	query := `
		SELECT id, store_id, invoice_id, lines, total_amount, payment_status, created_at, updated_at
		FROM transactions WHERE id = $1`
	rec, err := scanTransaction(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return rec, nil
}

// ListByInvoice devuelve las transacciones ligadas a una factura.
func (r *TransactionRepo) ListByInvoice(invoiceID string) ([]entity.TransactionRecord, error) {
	query := `
		SELECT id, store_id, invoice_id, lines, total_amount, payment_status, created_at, updated_at
		FROM transactions WHERE invoice_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []entity.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

func scanTransaction(row interface{ Scan(dest ...any) error }) (*entity.TransactionRecord, error) {
	var rec entity.TransactionRecord
	var status string
	var lines []byte
	err := row.Scan(
		&rec.ID, &rec.StoreID, &rec.InvoiceID, &lines,
		&rec.TotalAmount, &status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.PaymentStatus = entity.PaymentStatus(status)
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &rec.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal transaction lines: %w", err)
		}
	}
	return &rec, nil
}
