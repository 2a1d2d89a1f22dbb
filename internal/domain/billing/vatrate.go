// Package billing contiene el núcleo fiscal puro: tipos de valor, motor de
// cálculo de totales e IVA, y el servicio de validación de emisión. Ninguna
// función de este paquete toca I/O ni muta entidades.
package billing

import (
	"fmt"
	"time"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Tipos de IVA vigentes en Portugal continental.
var (
	VATRateReduced      = decimal.NewFromInt(6)
	VATRateIntermediate = decimal.NewFromInt(13)
	VATRateStandard     = decimal.NewFromInt(23)
)

// VATRate es un porcentaje de IVA validado en [0,100].
type VATRate struct {
	value decimal.Decimal
}

// NewVATRate construye un tipo de IVA válido.
func NewVATRate(v decimal.Decimal) (VATRate, error) {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return VATRate{}, fmt.Errorf("%w: tipo de IVA %s fuera de [0,100]", domain.ErrInvalidInput, v)
	}
	return VATRate{value: v}, nil
}

// Decimal devuelve el porcentaje como decimal.
func (r VATRate) Decimal() decimal.Decimal { return r.value }

// Fraction devuelve el tipo como fracción (23 → 0.23).
func (r VATRate) Fraction() decimal.Decimal {
	return r.value.Div(decimal.NewFromInt(100))
}

func (r VATRate) String() string { return r.value.String() + "%" }

// IsCurrentVATRate indica si el tipo coincide con alguno de los vigentes en
// Portugal continental: exento (0), reducido, intermedio o normal.
func IsCurrentVATRate(v decimal.Decimal) bool {
	return v.IsZero() ||
		v.Equal(VATRateReduced) ||
		v.Equal(VATRateIntermediate) ||
		v.Equal(VATRateStandard)
}

// Period es un rango temporal opcional en ambos extremos. Si ambos están
// presentes, End no puede ser anterior a Start.
type Period struct {
	start *time.Time
	end   *time.Time
}

// NewPeriod construye el período validando el orden de los extremos.
func NewPeriod(start, end *time.Time) (Period, error) {
	if start != nil && end != nil && end.Before(*start) {
		return Period{}, fmt.Errorf("%w: el fin del período es anterior al inicio", domain.ErrInvalidInput)
	}
	return Period{start: cloneTime(start), end: cloneTime(end)}, nil
}

// Start devuelve el inicio del período o nil (abierto por la izquierda).
func (p Period) Start() *time.Time { return cloneTime(p.start) }

// End devuelve el fin del período o nil (abierto por la derecha).
func (p Period) End() *time.Time { return cloneTime(p.end) }

// Contains indica si t cae dentro del período (extremos inclusivos).
func (p Period) Contains(t time.Time) bool {
	if p.start != nil && t.Before(*p.start) {
		return false
	}
	if p.end != nil && t.After(*p.end) {
		return false
	}
	return true
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
