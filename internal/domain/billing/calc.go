package billing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// toleranceCents es la tolerancia al comparar totales almacenados contra
// totales recalculados (un céntimo).
var toleranceCents = decimal.NewFromFloat(0.01)

// LineFigures son las cifras calculadas de una línea.
type LineFigures struct {
	Subtotal  decimal.Decimal
	VATAmount decimal.Decimal
	Total     decimal.Decimal
}

// Totals son los agregados de una factura. Siempre Total = Subtotal + VATTotal.
type Totals struct {
	Subtotal decimal.Decimal
	VATTotal decimal.Decimal
	Total    decimal.Decimal
}

// RateBreakdown es el desglose de IVA para un tipo concreto.
type RateBreakdown struct {
	Rate      decimal.Decimal
	Base      decimal.Decimal
	VATAmount decimal.Decimal
}

// LineCounts cuenta las líneas según a qué referencian.
type LineCounts struct {
	Product int
	Service int
	Generic int
}

// CalculateLines computa cifras por línea y agregados. Disciplina de
// redondeo: half away from zero a 2 decimales por línea; los agregados son
// sumas exactas de las líneas redondeadas (la misma que aplican los métodos
// de entity.InvoiceLine, así la entidad y el motor nunca divergen).
// Lista vacía ⇒ todas las cifras a cero.
func CalculateLines(lines []entity.InvoiceLine) (Totals, []LineFigures, error) {
	figures := make([]LineFigures, 0, len(lines))
	totals := Totals{Subtotal: decimal.Zero, VATTotal: decimal.Zero, Total: decimal.Zero}
	for idx, l := range lines {
		if err := l.Validate(); err != nil {
			return Totals{}, nil, fmt.Errorf("línea %d: %w", idx, err)
		}
		f := LineFigures{
			Subtotal:  l.Subtotal(),
			VATAmount: l.VATAmount(),
			Total:     l.Total(),
		}
		figures = append(figures, f)
		totals.Subtotal = totals.Subtotal.Add(f.Subtotal)
		totals.VATTotal = totals.VATTotal.Add(f.VATAmount)
	}
	totals.Total = totals.Subtotal.Add(totals.VATTotal)
	return totals, figures, nil
}

// Calculate computa los agregados de la factura completa.
func Calculate(inv *entity.Invoice) (Totals, error) {
	if inv == nil {
		return Totals{}, fmt.Errorf("%w: factura nula", domain.ErrInvalidInput)
	}
	totals, _, err := CalculateLines(inv.Lines())
	return totals, err
}

// VATBreakdown agrupa base e IVA por tipo distinto, ordenado por tipo
// ascendente para salida estable en exports.
func VATBreakdown(lines []entity.InvoiceLine) []RateBreakdown {
	byRate := make(map[string]*RateBreakdown)
	for _, l := range lines {
		key := l.VATRate.String()
		b, ok := byRate[key]
		if !ok {
			b = &RateBreakdown{Rate: l.VATRate, Base: decimal.Zero, VATAmount: decimal.Zero}
			byRate[key] = b
		}
		b.Base = b.Base.Add(l.Subtotal())
		b.VATAmount = b.VATAmount.Add(l.VATAmount())
	}
	out := make([]RateBreakdown, 0, len(byRate))
	for _, b := range byRate {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate.LessThan(out[j].Rate) })
	return out
}

// TotalQuantity suma las cantidades de todas las líneas.
func TotalQuantity(lines []entity.InvoiceLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// CountLines clasifica las líneas por referencia: producto, servicio o genérica.
func CountLines(lines []entity.InvoiceLine) LineCounts {
	var c LineCounts
	for _, l := range lines {
		switch {
		case l.ProductID != "":
			c.Product++
		case l.ServiceContext != "":
			c.Service++
		default:
			c.Generic++
		}
	}
	return c
}

// ValidateStoredTotals compara los totales almacenados en la factura contra
// los recalculados desde sus líneas, con tolerancia de un céntimo por campo.
func ValidateStoredTotals(inv *entity.Invoice) error {
	if inv == nil {
		return fmt.Errorf("%w: factura nula", domain.ErrInvalidInput)
	}
	computed, err := Calculate(inv)
	if err != nil {
		return err
	}
	var errs []error
	if diff := inv.Subtotal().Sub(computed.Subtotal).Abs(); diff.GreaterThan(toleranceCents) {
		errs = append(errs, fmt.Errorf("subtotal almacenado (%s) difiere del recalculado (%s)", inv.Subtotal(), computed.Subtotal))
	}
	if diff := inv.VATTotal().Sub(computed.VATTotal).Abs(); diff.GreaterThan(toleranceCents) {
		errs = append(errs, fmt.Errorf("IVA almacenado (%s) difiere del recalculado (%s)", inv.VATTotal(), computed.VATTotal))
	}
	if diff := inv.Total().Sub(computed.Total).Abs(); diff.GreaterThan(toleranceCents) {
		errs = append(errs, fmt.Errorf("total almacenado (%s) difiere del recalculado (%s)", inv.Total(), computed.Total))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{fmt.Errorf("%w: totales incoherentes", domain.ErrInvalidInput)}, errs...)...)
	}
	return nil
}
