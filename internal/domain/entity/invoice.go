package entity

import (
	"fmt"
	"time"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/shopspring/decimal"
)

// InvoiceStatus es el estado del ciclo de vida fiscal de una factura.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
	InvoiceStatusRefunded  InvoiceStatus = "REFUNDED"
)

// InvoiceStatuses lista los estados válidos (útil para tests y CHECKs).
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPaid,
	InvoiceStatusCancelled, InvoiceStatusRefunded,
}

// invoiceTransitions es la tabla de transiciones legal. Ninguna transición
// vuelve a DRAFT; CANCELLED y REFUNDED son terminales.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusIssued, InvoiceStatusCancelled},
	InvoiceStatusIssued:    {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:      {InvoiceStatusRefunded},
	InvoiceStatusCancelled: {},
	InvoiceStatusRefunded:  {},
}

// CanTransition indica si el paso from→to está en la tabla legal.
func CanTransition(from, to InvoiceStatus) bool {
	for _, t := range invoiceTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// InvoiceLine es una línea de factura. Referencia como máximo uno de
// ProductID (producto del catálogo) o ServiceContext (servicio descrito en
// texto libre); ambos vacíos es válido (línea genérica).
type InvoiceLine struct {
	Description    string
	ProductID      string
	ServiceContext string
	Quantity       int64
	UnitPrice      decimal.Decimal
	VATRate        decimal.Decimal // porcentaje [0,100]
}

// Validate comprueba los invariantes de la línea.
func (l InvoiceLine) Validate() error {
	if l.ProductID != "" && l.ServiceContext != "" {
		return fmt.Errorf("%w: la línea no puede referenciar producto y servicio a la vez", domain.ErrInvalidInput)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser un entero positivo", domain.ErrInvalidInput)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: el precio unitario no puede ser negativo", domain.ErrInvalidInput)
	}
	if l.VATRate.IsNegative() || l.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: el tipo de IVA debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	return nil
}

// Subtotal devuelve cantidad × precio unitario, redondeado a 2 decimales
// (half away from zero). El redondeo se hace por línea; los agregados de la
// factura son sumas exactas de líneas ya redondeadas.
func (l InvoiceLine) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice).Round(2)
}

// VATAmount devuelve el IVA de la línea sobre el subtotal redondeado.
func (l InvoiceLine) VATAmount() decimal.Decimal {
	return l.Subtotal().Mul(l.VATRate).Div(decimal.NewFromInt(100)).Round(2)
}

// Total devuelve subtotal + IVA de la línea.
func (l InvoiceLine) Total() decimal.Decimal {
	return l.Subtotal().Add(l.VATAmount())
}

// Invoice es el documento fiscal de venta. Estado privado: solo los métodos
// del agregado pueden mutarlo, y únicamente mientras está en DRAFT. Desde la
// emisión (ISSUED) líneas, número y comprador quedan congelados; las
// facturas nunca se borran, se corrigen con nota de crédito o anulación.
type Invoice struct {
	id              string
	companyID       string
	storeID         string
	number          string
	buyerCustomerID string // "" = consumidor final sin identificar
	lines           []InvoiceLine
	subtotal        decimal.Decimal
	vatTotal        decimal.Decimal
	total           decimal.Decimal
	status          InvoiceStatus
	issuedAt        *time.Time
	paidAt          *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

// NewInvoice crea una factura en DRAFT. id, companyID y storeID son
// obligatorios e inmutables durante toda la vida del documento.
func NewInvoice(id, companyID, storeID string, now time.Time) (*Invoice, error) {
	if id == "" || companyID == "" || storeID == "" {
		return nil, fmt.Errorf("%w: factura requiere id, empresa y tienda", domain.ErrInvalidInput)
	}
	return &Invoice{
		id:        id,
		companyID: companyID,
		storeID:   storeID,
		status:    InvoiceStatusDraft,
		subtotal:  decimal.Zero,
		vatTotal:  decimal.Zero,
		total:     decimal.Zero,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Getters. Lines devuelve una copia defensiva.

func (i *Invoice) ID() string              { return i.id }
func (i *Invoice) CompanyID() string       { return i.companyID }
func (i *Invoice) StoreID() string         { return i.storeID }
func (i *Invoice) Number() string          { return i.number }
func (i *Invoice) BuyerCustomerID() string { return i.buyerCustomerID }
func (i *Invoice) Status() InvoiceStatus   { return i.status }
func (i *Invoice) Subtotal() decimal.Decimal { return i.subtotal }
func (i *Invoice) VATTotal() decimal.Decimal { return i.vatTotal }
func (i *Invoice) Total() decimal.Decimal    { return i.total }
func (i *Invoice) CreatedAt() time.Time      { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time      { return i.updatedAt }

func (i *Invoice) Lines() []InvoiceLine {
	out := make([]InvoiceLine, len(i.lines))
	copy(out, i.lines)
	return out
}

// IssuedAt devuelve la fecha de emisión o nil si aún no se emitió.
func (i *Invoice) IssuedAt() *time.Time {
	if i.issuedAt == nil {
		return nil
	}
	t := *i.issuedAt
	return &t
}

// PaidAt devuelve la fecha de pago o nil.
func (i *Invoice) PaidAt() *time.Time {
	if i.paidAt == nil {
		return nil
	}
	t := *i.paidAt
	return &t
}

// IsImmutable indica si el documento dejó DRAFT (líneas/número/comprador congelados).
func (i *Invoice) IsImmutable() bool { return i.status != InvoiceStatusDraft }

// IsTerminal indica si el estado no admite ninguna transición más.
func (i *Invoice) IsTerminal() bool { return len(invoiceTransitions[i.status]) == 0 }

// mutableGuard rechaza mutaciones estructurales fuera de DRAFT.
func (i *Invoice) mutableGuard() error {
	if i.status != InvoiceStatusDraft {
		return fmt.Errorf("%w: la factura está en %s y no admite cambios", domain.ErrImmutable, i.status)
	}
	return nil
}

// AddLine agrega una línea y recalcula totales. Solo en DRAFT.
func (i *Invoice) AddLine(line InvoiceLine) error {
	if err := i.mutableGuard(); err != nil {
		return err
	}
	if err := line.Validate(); err != nil {
		return err
	}
	i.lines = append(i.lines, line)
	i.recalculate()
	return nil
}

// UpdateLine reemplaza la línea en la posición idx. Solo en DRAFT.
func (i *Invoice) UpdateLine(idx int, line InvoiceLine) error {
	if err := i.mutableGuard(); err != nil {
		return err
	}
	if idx < 0 || idx >= len(i.lines) {
		return fmt.Errorf("%w: línea %d inexistente", domain.ErrInvalidInput, idx)
	}
	if err := line.Validate(); err != nil {
		return err
	}
	i.lines[idx] = line
	i.recalculate()
	return nil
}

// RemoveLine elimina la línea en la posición idx. Solo en DRAFT.
func (i *Invoice) RemoveLine(idx int) error {
	if err := i.mutableGuard(); err != nil {
		return err
	}
	if idx < 0 || idx >= len(i.lines) {
		return fmt.Errorf("%w: línea %d inexistente", domain.ErrInvalidInput, idx)
	}
	i.lines = append(i.lines[:idx], i.lines[idx+1:]...)
	i.recalculate()
	return nil
}

// SetNumber fija el número fiscal. Solo en DRAFT; la unicidad dentro del
// ámbito (empresa, tienda, año) la garantiza el generador secuencial.
func (i *Invoice) SetNumber(number string) error {
	if err := i.mutableGuard(); err != nil {
		return err
	}
	if number == "" {
		return fmt.Errorf("%w: número de factura vacío", domain.ErrInvalidInput)
	}
	i.number = number
	i.touch()
	return nil
}

// SetBuyer fija o limpia el cliente comprador. Solo en DRAFT.
func (i *Invoice) SetBuyer(customerID string) error {
	if err := i.mutableGuard(); err != nil {
		return err
	}
	i.buyerCustomerID = customerID
	i.touch()
	return nil
}

// Issue emite la factura: DRAFT → ISSUED. Exige al menos una línea y número
// asignado, y fija issuedAt exactamente una vez. Irreversible.
func (i *Invoice) Issue(now time.Time) error {
	if err := i.checkTransition(InvoiceStatusIssued); err != nil {
		return err
	}
	if len(i.lines) == 0 {
		return fmt.Errorf("%w: no se puede emitir una factura sin líneas", domain.ErrInvalidInput)
	}
	if i.number == "" {
		return fmt.Errorf("%w: no se puede emitir una factura sin número", domain.ErrInvalidInput)
	}
	i.status = InvoiceStatusIssued
	i.issuedAt = &now
	i.touch()
	return nil
}

// MarkPaid registra el pago: ISSUED → PAID.
func (i *Invoice) MarkPaid(paidAt time.Time) error {
	if err := i.checkTransition(InvoiceStatusPaid); err != nil {
		return err
	}
	i.status = InvoiceStatusPaid
	i.paidAt = &paidAt
	i.touch()
	return nil
}

// AmendPaidAt corrige la fecha de pago de una factura ya PAID (camino de
// corrección con rol elevado). No toca líneas, número ni comprador.
func (i *Invoice) AmendPaidAt(paidAt time.Time) error {
	if i.status != InvoiceStatusPaid {
		return fmt.Errorf("%w: solo una factura PAID admite corregir la fecha de pago (estado actual %s)", domain.ErrInvalidInput, i.status)
	}
	i.paidAt = &paidAt
	i.touch()
	return nil
}

// Refund registra la devolución: PAID → REFUNDED (terminal).
func (i *Invoice) Refund(now time.Time) error {
	if err := i.checkTransition(InvoiceStatusRefunded); err != nil {
		return err
	}
	i.status = InvoiceStatusRefunded
	i.touch()
	_ = now // la fecha de devolución vive en la nota de crédito asociada
	return nil
}

// Cancel anula la factura: DRAFT|ISSUED → CANCELLED (terminal).
// Una factura PAID no se anula: el camino correcto es la devolución.
func (i *Invoice) Cancel(now time.Time) error {
	if i.status == InvoiceStatusPaid || i.status == InvoiceStatusRefunded {
		return fmt.Errorf("%w: la factura en %s no se puede anular; use el flujo de devolución (nota de crédito)", domain.ErrInvalidInput, i.status)
	}
	if err := i.checkTransition(InvoiceStatusCancelled); err != nil {
		return err
	}
	i.status = InvoiceStatusCancelled
	i.touch()
	_ = now
	return nil
}

func (i *Invoice) checkTransition(to InvoiceStatus) error {
	if !CanTransition(i.status, to) {
		return fmt.Errorf("%w: transición ilegal %s→%s", domain.ErrInvalidInput, i.status, to)
	}
	return nil
}

// recalculate recomputa los totales derivados a partir de las líneas.
// Disciplina de redondeo: cada línea redondea a 2 decimales; los agregados
// son sumas exactas de las líneas redondeadas.
func (i *Invoice) recalculate() {
	subtotal, vat := decimal.Zero, decimal.Zero
	for _, l := range i.lines {
		subtotal = subtotal.Add(l.Subtotal())
		vat = vat.Add(l.VATAmount())
	}
	i.subtotal = subtotal
	i.vatTotal = vat
	i.total = subtotal.Add(vat)
	i.touch()
}

func (i *Invoice) touch() { i.updatedAt = time.Now() }

// InvoiceRecord es la forma plana persistible de la factura. Las líneas van
// embebidas como array ordenado (no tabla aparte); las fechas se serializan
// ISO-8601 en el adaptador de persistencia.
type InvoiceRecord struct {
	ID              string
	CompanyID       string
	StoreID         string
	Number          string
	BuyerCustomerID string
	Lines           []InvoiceLine
	Subtotal        decimal.Decimal
	VATTotal        decimal.Decimal
	Total           decimal.Decimal
	Status          InvoiceStatus
	IssuedAt        *time.Time
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Record devuelve la forma persistible del agregado (copia).
func (i *Invoice) Record() InvoiceRecord {
	return InvoiceRecord{
		ID:              i.id,
		CompanyID:       i.companyID,
		StoreID:         i.storeID,
		Number:          i.number,
		BuyerCustomerID: i.buyerCustomerID,
		Lines:           i.Lines(),
		Subtotal:        i.subtotal,
		VATTotal:        i.vatTotal,
		Total:           i.total,
		Status:          i.status,
		IssuedAt:        i.IssuedAt(),
		PaidAt:          i.PaidAt(),
		CreatedAt:       i.createdAt,
		UpdatedAt:       i.updatedAt,
	}
}

// RehydrateInvoice reconstruye el agregado desde un registro persistido,
// validando coherencia. Una factura ya emitida sin issuedAt es dato corrupto
// y se rechaza de plano.
func RehydrateInvoice(rec InvoiceRecord) (*Invoice, error) {
	if rec.ID == "" || rec.CompanyID == "" || rec.StoreID == "" {
		return nil, fmt.Errorf("%w: registro de factura sin id, empresa o tienda", domain.ErrInvalidInput)
	}
	valid := false
	for _, s := range InvoiceStatuses {
		if rec.Status == s {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("%w: estado de factura desconocido %q", domain.ErrInvalidInput, rec.Status)
	}
	if rec.Status != InvoiceStatusDraft && rec.Status != InvoiceStatusCancelled && rec.IssuedAt == nil {
		return nil, fmt.Errorf("%w: factura %s en estado %s sin fecha de emisión (dato corrupto)", domain.ErrInvalidInput, rec.ID, rec.Status)
	}
	for idx, l := range rec.Lines {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("línea %d: %w", idx, err)
		}
	}
	inv := &Invoice{
		id:              rec.ID,
		companyID:       rec.CompanyID,
		storeID:         rec.StoreID,
		number:          rec.Number,
		buyerCustomerID: rec.BuyerCustomerID,
		lines:           append([]InvoiceLine(nil), rec.Lines...),
		status:          rec.Status,
		createdAt:       rec.CreatedAt,
		updatedAt:       rec.UpdatedAt,
	}
	if rec.IssuedAt != nil {
		t := *rec.IssuedAt
		inv.issuedAt = &t
	}
	if rec.PaidAt != nil {
		t := *rec.PaidAt
		inv.paidAt = &t
	}
	// Los totales persistidos se respetan tal cual; la coherencia con las
	// líneas se verifica aparte (billing.ValidateStoredTotals).
	inv.subtotal = rec.Subtotal
	inv.vatTotal = rec.VATTotal
	inv.total = rec.Total
	return inv, nil
}
