package billing

import (
	"context"
	"time"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
)

// maxNumberAttempts acota el reintento de numeración. El generador ya
// garantiza unicidad dentro del ámbito; el re-chequeo defensivo protege
// contra anomalías de datos fuera de banda (cargas manuales, migraciones).
const maxNumberAttempts = 5

// Issue emite la factura: valida, obtiene número secuencial con re-chequeo
// de unicidad, transiciona a ISSUED y persiste. La emisión es irreversible.
func (uc *InvoiceLifecycleUseCase) Issue(ctx context.Context, companyID, invoiceID, performedBy string) (*dto.InvoiceResponse, error) {
	if _, err := uc.authorize(ctx, performedBy, rolesIssue); err != nil {
		return nil, err
	}

	inv, err := uc.loadInvoice(companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status() != entity.InvoiceStatusDraft {
		return nil, domain.NewError(domain.CodeValidation,
			"solo una factura en DRAFT puede emitirse (estado actual "+string(inv.Status())+")")
	}
	before := inv.Record()

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar empresa", err)
	}
	if company == nil {
		return nil, domain.NewError(domain.CodeNotFound, "empresa no encontrada")
	}

	// El borrador lleva número placeholder; el veredicto de emisión se evalúa
	// con el placeholder presente (número no vacío) y el resto de reglas.
	check := uc.issuance.ValidateIssuance(inv, company)
	if !check.CanIssue {
		return nil, validationError(check)
	}

	now := time.Now()
	number, err := uc.nextUniqueNumber(ctx, companyID, inv.StoreID(), now.Year())
	if err != nil {
		return nil, err
	}

	// Solo si difiere del placeholder; legal únicamente en DRAFT.
	if number != inv.Number() {
		if err := inv.SetNumber(number); err != nil {
			return nil, domain.WrapError(domain.CodeValidation, "asignar número fiscal", err)
		}
	}
	if err := inv.Issue(now); err != nil {
		return nil, domain.WrapError(domain.CodeValidation, "emitir factura", err)
	}
	if err := uc.invoiceRepo.Update(inv.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir factura emitida", err)
	}

	b, a := statusDiff(before, inv.Record())
	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "invoice",
		EntityID:    inv.ID(),
		Action:      "issue",
		PerformedBy: performedBy,
		Before:      b,
		After:       a,
		At:          now,
	})
	return invoiceToResponse(inv), nil
}

// nextUniqueNumber pide números al generador hasta encontrar uno sin colisión
// registrada, acotado a maxNumberAttempts intentos en total.
func (uc *InvoiceLifecycleUseCase) nextUniqueNumber(ctx context.Context, companyID, storeID string, year int) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := uc.numbers.Next(ctx, companyID, storeID, year)
		if err != nil {
			return "", domain.WrapError(domain.CodeInternal, "generar número de factura", err)
		}
		existing, err := uc.invoiceRepo.GetByNumber(companyID, number)
		if err != nil {
			return "", domain.WrapError(domain.CodeInternal, "verificar unicidad del número", err)
		}
		if existing == nil {
			return number, nil
		}
	}
	return "", domain.NewError(domain.CodeInvoiceNumberConflict,
		"no se obtuvo un número de factura único tras varios intentos")
}
