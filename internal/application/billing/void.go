package billing

import (
	"context"
	"time"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/rs/zerolog/log"
)

const maxVoidReasonLen = 500

// Void anula una factura emitida o pagada. Una transacción liquidada ligada
// a la factura bloquea la anulación; si la consulta de transacciones falla,
// la anulación degrada con gracia y continúa.
func (uc *InvoiceLifecycleUseCase) Void(ctx context.Context, companyID, invoiceID string, in dto.VoidRequest, performedBy string) (*dto.InvoiceResponse, error) {
	if _, err := uc.authorize(ctx, performedBy, rolesVoid); err != nil {
		return nil, err
	}

	if in.Reason == "" {
		return nil, domain.NewError(domain.CodeValidation, "motivo de anulación requerido")
	}
	if len(in.Reason) > maxVoidReasonLen {
		return nil, domain.NewError(domain.CodeValidation, "motivo de anulación demasiado largo (máx 500)")
	}

	inv, err := uc.loadInvoice(companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status() != entity.InvoiceStatusIssued && inv.Status() != entity.InvoiceStatusPaid {
		return nil, domain.NewError(domain.CodeConflict,
			"solo una factura ISSUED o PAID admite anulación (estado actual "+string(inv.Status())+")")
	}
	before := inv.Record()

	// Chequeo de transacciones bloqueantes con degradación: un fallo de
	// lectura no impide anular (el estado de la factura sigue siendo la
	// fuente de verdad fiscal).
	txs, err := uc.transactionRepo.ListByInvoice(invoiceID)
	if err != nil {
		log.Warn().Err(err).Str("invoice_id", invoiceID).
			Msg("fallo consultando transacciones ligadas; la anulación continúa")
	} else {
		for _, rec := range txs {
			if rec.PaymentStatus == entity.PaymentStatusPaidManual {
				return nil, domain.NewError(domain.CodeConflict,
					"la factura tiene una transacción liquidada; anule primero la liquidación")
			}
		}
	}

	now := time.Now()
	if err := inv.Cancel(now); err != nil {
		return nil, domain.WrapError(domain.CodeValidation, "anular factura", err)
	}
	if err := uc.invoiceRepo.Update(inv.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir anulación", err)
	}

	b, a := statusDiff(before, inv.Record())
	a["reason"] = in.Reason
	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "invoice",
		EntityID:    inv.ID(),
		Action:      "void",
		PerformedBy: performedBy,
		Before:      b,
		After:       a,
		At:          now,
	})
	return invoiceToResponse(inv), nil
}
