package entity

import (
	"fmt"
	"time"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentStatus es el estado de liquidación de una transacción de punto de venta.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusPaidManual PaymentStatus = "PAID_MANUAL"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// TransactionLine es una línea de transacción. Referencia exactamente uno de
// ProductID o ServiceContext.
type TransactionLine struct {
	ProductID      string
	ServiceContext string
	Quantity       int64
	UnitPrice      decimal.Decimal
}

// Validate comprueba los invariantes de la línea.
func (l TransactionLine) Validate() error {
	hasProduct := l.ProductID != ""
	hasService := l.ServiceContext != ""
	if hasProduct == hasService {
		return fmt.Errorf("%w: la línea debe referenciar exactamente un producto o un servicio", domain.ErrInvalidInput)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser un entero positivo", domain.ErrInvalidInput)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: el precio unitario no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// Amount devuelve cantidad × precio unitario redondeado a 2 decimales.
func (l TransactionLine) Amount() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice).Round(2)
}

// Transaction es el registro de liquidación de punto de venta asociado a una
// factura. storeID e invoiceID son inmutables; totalAmount es derivado.
// PENDING → PAID_MANUAL → REFUNDED, sin retrocesos.
type Transaction struct {
	id            string
	storeID       string
	invoiceID     string
	lines         []TransactionLine
	totalAmount   decimal.Decimal
	paymentStatus PaymentStatus
	createdAt     time.Time
	updatedAt     time.Time
}

// NewTransaction crea una transacción PENDING con al menos una línea válida.
func NewTransaction(id, storeID, invoiceID string, lines []TransactionLine, now time.Time) (*Transaction, error) {
	if id == "" || storeID == "" || invoiceID == "" {
		return nil, fmt.Errorf("%w: transacción requiere id, tienda y factura", domain.ErrInvalidInput)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: transacción sin líneas", domain.ErrInvalidInput)
	}
	total := decimal.Zero
	for idx, l := range lines {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("línea %d: %w", idx, err)
		}
		total = total.Add(l.Amount())
	}
	return &Transaction{
		id:            id,
		storeID:       storeID,
		invoiceID:     invoiceID,
		lines:         append([]TransactionLine(nil), lines...),
		totalAmount:   total,
		paymentStatus: PaymentStatusPending,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func (t *Transaction) ID() string                   { return t.id }
func (t *Transaction) StoreID() string              { return t.storeID }
func (t *Transaction) InvoiceID() string            { return t.invoiceID }
func (t *Transaction) TotalAmount() decimal.Decimal { return t.totalAmount }
func (t *Transaction) PaymentStatus() PaymentStatus { return t.paymentStatus }
func (t *Transaction) CreatedAt() time.Time         { return t.createdAt }
func (t *Transaction) UpdatedAt() time.Time         { return t.updatedAt }

func (t *Transaction) Lines() []TransactionLine {
	out := make([]TransactionLine, len(t.lines))
	copy(out, t.lines)
	return out
}

// IsSettled indica si la transacción está liquidada (bloquea la anulación de
// la factura asociada).
func (t *Transaction) IsSettled() bool { return t.paymentStatus == PaymentStatusPaidManual }

// MarkPaidManual registra el cobro manual: PENDING → PAID_MANUAL.
// Una transacción liquidada nunca vuelve a PENDING.
func (t *Transaction) MarkPaidManual(now time.Time) error {
	if t.paymentStatus != PaymentStatusPending {
		return fmt.Errorf("%w: transición ilegal %s→%s", domain.ErrInvalidInput, t.paymentStatus, PaymentStatusPaidManual)
	}
	t.paymentStatus = PaymentStatusPaidManual
	t.updatedAt = now
	return nil
}

// Refund registra la devolución: solo desde PAID_MANUAL.
func (t *Transaction) Refund(now time.Time) error {
	if t.paymentStatus != PaymentStatusPaidManual {
		return fmt.Errorf("%w: solo una transacción cobrada puede devolverse (estado actual %s)", domain.ErrInvalidInput, t.paymentStatus)
	}
	t.paymentStatus = PaymentStatusRefunded
	t.updatedAt = now
	return nil
}

// TransactionRecord es la forma plana persistible.
type TransactionRecord struct {
	ID            string
	StoreID       string
	InvoiceID     string
	Lines         []TransactionLine
	TotalAmount   decimal.Decimal
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Record devuelve la forma persistible.
func (t *Transaction) Record() TransactionRecord {
	return TransactionRecord{
		ID:            t.id,
		StoreID:       t.storeID,
		InvoiceID:     t.invoiceID,
		Lines:         t.Lines(),
		TotalAmount:   t.totalAmount,
		PaymentStatus: t.paymentStatus,
		CreatedAt:     t.createdAt,
		UpdatedAt:     t.updatedAt,
	}
}

// RehydrateTransaction reconstruye desde un registro persistido.
func RehydrateTransaction(rec TransactionRecord) (*Transaction, error) {
	if rec.ID == "" || rec.StoreID == "" || rec.InvoiceID == "" {
		return nil, fmt.Errorf("%w: registro de transacción incompleto", domain.ErrInvalidInput)
	}
	switch rec.PaymentStatus {
	case PaymentStatusPending, PaymentStatusPaidManual, PaymentStatusRefunded:
	default:
		return nil, fmt.Errorf("%w: estado de pago desconocido %q", domain.ErrInvalidInput, rec.PaymentStatus)
	}
	for idx, l := range rec.Lines {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("línea %d: %w", idx, err)
		}
	}
	return &Transaction{
		id:            rec.ID,
		storeID:       rec.StoreID,
		invoiceID:     rec.InvoiceID,
		lines:         append([]TransactionLine(nil), rec.Lines...),
		totalAmount:   rec.TotalAmount,
		paymentStatus: rec.PaymentStatus,
		createdAt:     rec.CreatedAt,
		updatedAt:     rec.UpdatedAt,
	}, nil
}
