package billing

import (
	"context"
	"time"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
)

const maxPaymentMethodLen = 64

// MarkAsPaid registra el pago de una factura emitida. Una factura ya PAID
// solo se re-registra (corrección) con rol elevado.
func (uc *InvoiceLifecycleUseCase) MarkAsPaid(ctx context.Context, companyID, invoiceID string, in dto.MarkPaidRequest, performedBy string) (*dto.InvoiceResponse, error) {
	roles, err := uc.authorize(ctx, performedBy, rolesPay)
	if err != nil {
		return nil, err
	}

	if in.PaymentMethod == "" {
		return nil, domain.NewError(domain.CodeValidation, "método de pago requerido")
	}
	if len(in.PaymentMethod) > maxPaymentMethodLen {
		return nil, domain.NewError(domain.CodeValidation, "método de pago demasiado largo (máx 64)")
	}
	now := time.Now()
	paidAt := now
	if in.PaidAt != nil {
		if in.PaidAt.After(now) {
			return nil, domain.NewError(domain.CodeValidation, "la fecha de pago no puede estar en el futuro")
		}
		paidAt = *in.PaidAt
	}

	inv, err := uc.loadInvoice(companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	before := inv.Record()

	switch inv.Status() {
	case entity.InvoiceStatusIssued:
		if err := inv.MarkPaid(paidAt); err != nil {
			return nil, domain.WrapError(domain.CodeValidation, "registrar pago", err)
		}
	case entity.InvoiceStatusPaid:
		// Camino de corrección: solo roles elevados.
		if !roles.ContainsAny(rolesPayOverride) {
			return nil, domain.NewError(domain.CodeConflict, "la factura ya está pagada")
		}
		if err := inv.AmendPaidAt(paidAt); err != nil {
			return nil, domain.WrapError(domain.CodeValidation, "corregir pago", err)
		}
	default:
		return nil, domain.NewError(domain.CodeConflict,
			"solo una factura ISSUED admite registro de pago (estado actual "+string(inv.Status())+")")
	}

	if err := uc.invoiceRepo.Update(inv.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir pago", err)
	}

	b, a := statusDiff(before, inv.Record())
	b["payment_method"] = ""
	a["payment_method"] = in.PaymentMethod
	if in.ExternalReference != "" {
		a["external_reference"] = in.ExternalReference
	}
	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "invoice",
		EntityID:    inv.ID(),
		Action:      "mark_paid",
		PerformedBy: performedBy,
		Before:      b,
		After:       a,
		At:          now,
	})
	return invoiceToResponse(inv), nil
}
