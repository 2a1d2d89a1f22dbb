package entity

import (
	"fmt"
	"time"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/shopspring/decimal"
)

// CreditNote es el documento de corrección de una factura emitida: reduce su
// valor efectivo sin alterarla. Mutable (importe/motivo) solo mientras no se
// emite; emitida, queda totalmente inmutable.
type CreditNote struct {
	id        string
	invoiceID string
	amount    decimal.Decimal
	reason    string
	issuedAt  *time.Time
	createdBy string
	createdAt time.Time
}

// NewCreditNote crea una nota de crédito sin emitir. invoiceID es obligatorio
// e inmutable: siempre referencia una factura existente (lo verifica el caso
// de uso antes de construir). El importe debe ser > 0.
func NewCreditNote(id, invoiceID, createdBy string, amount decimal.Decimal, reason string, now time.Time) (*CreditNote, error) {
	if id == "" || invoiceID == "" {
		return nil, fmt.Errorf("%w: nota de crédito requiere id y factura", domain.ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: el importe de la nota de crédito debe ser mayor que cero", domain.ErrInvalidInput)
	}
	return &CreditNote{
		id:        id,
		invoiceID: invoiceID,
		amount:    amount,
		reason:    reason,
		createdBy: createdBy,
		createdAt: now,
	}, nil
}

func (c *CreditNote) ID() string              { return c.id }
func (c *CreditNote) InvoiceID() string       { return c.invoiceID }
func (c *CreditNote) Amount() decimal.Decimal { return c.amount }
func (c *CreditNote) Reason() string          { return c.reason }
func (c *CreditNote) CreatedBy() string       { return c.createdBy }
func (c *CreditNote) CreatedAt() time.Time    { return c.createdAt }

// IssuedAt devuelve la fecha de emisión o nil si sigue borrador.
func (c *CreditNote) IssuedAt() *time.Time {
	if c.issuedAt == nil {
		return nil
	}
	t := *c.issuedAt
	return &t
}

// IsIssued indica si la nota ya fue emitida (inmutable).
func (c *CreditNote) IsIssued() bool { return c.issuedAt != nil }

// SetAmount cambia el importe; solo antes de emitir.
func (c *CreditNote) SetAmount(amount decimal.Decimal) error {
	if c.IsIssued() {
		return fmt.Errorf("%w: la nota de crédito ya fue emitida", domain.ErrImmutable)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: el importe debe ser mayor que cero", domain.ErrInvalidInput)
	}
	c.amount = amount
	return nil
}

// SetReason cambia el motivo; solo antes de emitir.
func (c *CreditNote) SetReason(reason string) error {
	if c.IsIssued() {
		return fmt.Errorf("%w: la nota de crédito ya fue emitida", domain.ErrImmutable)
	}
	c.reason = reason
	return nil
}

// Issue fija issuedAt exactamente una vez y congela el documento.
func (c *CreditNote) Issue(now time.Time) error {
	if c.IsIssued() {
		return fmt.Errorf("%w: la nota de crédito ya fue emitida", domain.ErrConflict)
	}
	c.issuedAt = &now
	return nil
}

// CreditNoteRecord es la forma plana persistible.
type CreditNoteRecord struct {
	ID        string
	InvoiceID string
	Amount    decimal.Decimal
	Reason    string
	IssuedAt  *time.Time
	CreatedBy string
	CreatedAt time.Time
}

// Record devuelve la forma persistible.
func (c *CreditNote) Record() CreditNoteRecord {
	return CreditNoteRecord{
		ID:        c.id,
		InvoiceID: c.invoiceID,
		Amount:    c.amount,
		Reason:    c.reason,
		IssuedAt:  c.IssuedAt(),
		CreatedBy: c.createdBy,
		CreatedAt: c.createdAt,
	}
}

// RehydrateCreditNote reconstruye desde un registro persistido.
func RehydrateCreditNote(rec CreditNoteRecord) (*CreditNote, error) {
	if rec.ID == "" || rec.InvoiceID == "" {
		return nil, fmt.Errorf("%w: registro de nota de crédito sin id o factura", domain.ErrInvalidInput)
	}
	if !rec.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: nota de crédito %s con importe no positivo (dato corrupto)", domain.ErrInvalidInput, rec.ID)
	}
	cn := &CreditNote{
		id:        rec.ID,
		invoiceID: rec.InvoiceID,
		amount:    rec.Amount,
		reason:    rec.Reason,
		createdBy: rec.CreatedBy,
		createdAt: rec.CreatedAt,
	}
	if rec.IssuedAt != nil {
		t := *rec.IssuedAt
		cn.issuedAt = &t
	}
	return cn, nil
}
