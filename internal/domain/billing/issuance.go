package billing

import (
	"fmt"

	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/pkg/fiscal"
)

// IssuanceCheck es el resultado consultivo de validar una emisión. El
// servicio nunca muta nada: el orquestador decide qué hacer con el veredicto.
type IssuanceCheck struct {
	CanIssue bool
	Errors   []string
	Warnings []string
}

// IssuanceService valida emisiones y transiciones de estado de facturas.
// Sin estado; una instancia sirve para todo el proceso.
type IssuanceService struct{}

// NewIssuanceService construye el servicio.
func NewIssuanceService() *IssuanceService {
	return &IssuanceService{}
}

// ValidateIssuance decide si la factura puede emitirse contra la empresa
// dada: NIF válido, estado DRAFT, al menos una línea, número asignado y
// pertenencia de la factura a la empresa.
func (s *IssuanceService) ValidateIssuance(inv *entity.Invoice, company *entity.Company) IssuanceCheck {
	check := IssuanceCheck{}
	if inv == nil {
		check.Errors = append(check.Errors, "factura nula")
		return check
	}
	if company == nil {
		check.Errors = append(check.Errors, "empresa nula")
		return check
	}
	if inv.CompanyID() != company.ID {
		check.Errors = append(check.Errors, fmt.Sprintf("la factura pertenece a la empresa %s, no a %s", inv.CompanyID(), company.ID))
	}
	if err := fiscal.ValidateNIF(company.NIF); err != nil {
		check.Errors = append(check.Errors, fmt.Sprintf("NIF de la empresa inválido: %v", err))
	}
	if inv.Status() != entity.InvoiceStatusDraft {
		check.Errors = append(check.Errors, fmt.Sprintf("solo se emite desde DRAFT (estado actual %s)", inv.Status()))
	}
	if len(inv.Lines()) == 0 {
		check.Errors = append(check.Errors, "la factura no tiene líneas")
	}
	if inv.Number() == "" {
		check.Errors = append(check.Errors, "la factura no tiene número asignado")
	}
	if inv.BuyerCustomerID() == "" {
		check.Warnings = append(check.Warnings, "factura sin comprador identificado (consumidor final)")
	}
	for idx, l := range inv.Lines() {
		if !IsCurrentVATRate(l.VATRate) {
			check.Warnings = append(check.Warnings, fmt.Sprintf("línea %d: el tipo de IVA %s%% no es un tipo vigente en Portugal", idx, l.VATRate))
		}
	}
	check.CanIssue = len(check.Errors) == 0
	return check
}

// CanTransition indica si el paso from→to es legal según la tabla de estados.
func (s *IssuanceService) CanTransition(from, to entity.InvoiceStatus) bool {
	return entity.CanTransition(from, to)
}

// CanMarkAsPaid indica si la factura admite registro de pago.
func (s *IssuanceService) CanMarkAsPaid(inv *entity.Invoice) bool {
	return inv != nil && entity.CanTransition(inv.Status(), entity.InvoiceStatusPaid)
}

// CanRefund indica si la factura admite devolución.
func (s *IssuanceService) CanRefund(inv *entity.Invoice) bool {
	return inv != nil && entity.CanTransition(inv.Status(), entity.InvoiceStatusRefunded)
}

// CanCancel indica si la factura admite anulación.
func (s *IssuanceService) CanCancel(inv *entity.Invoice) bool {
	return inv != nil && entity.CanTransition(inv.Status(), entity.InvoiceStatusCancelled)
}

// IsImmutable indica si líneas/número/comprador están congelados.
func (s *IssuanceService) IsImmutable(inv *entity.Invoice) bool {
	return inv != nil && inv.IsImmutable()
}

// IsTerminal indica si el estado no admite más transiciones.
func (s *IssuanceService) IsTerminal(inv *entity.Invoice) bool {
	return inv != nil && inv.IsTerminal()
}
