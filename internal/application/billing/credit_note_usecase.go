package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// rolesCreditNote coincide con anulación: una nota de crédito es una
// corrección fiscal y exige el mismo nivel de confianza.
var rolesCreditNote = entity.NewRoleSet(entity.RoleManager, entity.RoleAccountant, entity.RoleOwner)

// CreditNoteUseCase gestiona notas de crédito: creación contra una factura
// emitida y emisión de la propia nota. Emitir la nota de una factura PAID
// completa el flujo de devolución (PAID → REFUNDED).
type CreditNoteUseCase struct {
	creditNoteRepo repository.CreditNoteRepository
	invoiceRepo    repository.InvoiceRepository
	roles          RoleResolver
	audit          AuditSink
}

// NewCreditNoteUseCase construye el caso de uso con sus puertos.
func NewCreditNoteUseCase(
	creditNoteRepo repository.CreditNoteRepository,
	invoiceRepo repository.InvoiceRepository,
	roles RoleResolver,
	audit AuditSink,
) *CreditNoteUseCase {
	return &CreditNoteUseCase{
		creditNoteRepo: creditNoteRepo,
		invoiceRepo:    invoiceRepo,
		roles:          roles,
		audit:          audit,
	}
}

func (uc *CreditNoteUseCase) authorize(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.NewError(domain.CodeUnauthorized, "identidad del solicitante ausente")
	}
	roles, err := uc.roles.ResolveRoles(ctx, userID)
	if err != nil {
		return domain.WrapError(domain.CodeUnauthorized, "no se pudieron resolver los roles del solicitante", err)
	}
	if !roles.ContainsAny(rolesCreditNote) {
		return domain.NewError(domain.CodeForbidden, "el rol del solicitante no permite gestionar notas de crédito")
	}
	return nil
}

// Create registra una nota de crédito sin emitir contra una factura emitida o
// pagada de la empresa. El importe no puede exceder el saldo pendiente de
// corrección (total menos notas ya emitidas).
func (uc *CreditNoteUseCase) Create(ctx context.Context, companyID string, in dto.CreateCreditNoteRequest, performedBy string) (*dto.CreditNoteResponse, error) {
	if err := uc.authorize(ctx, performedBy); err != nil {
		return nil, err
	}
	if in.InvoiceID == "" {
		return nil, domain.NewError(domain.CodeValidation, "factura requerida")
	}

	invRec, err := uc.invoiceRepo.GetByID(in.InvoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar factura", err)
	}
	if invRec == nil {
		return nil, domain.NewError(domain.CodeNotFound, "factura no encontrada")
	}
	if invRec.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeForbidden, "la factura pertenece a otra empresa")
	}
	switch invRec.Status {
	case entity.InvoiceStatusIssued, entity.InvoiceStatusPaid:
	default:
		return nil, domain.NewError(domain.CodeConflict,
			"solo una factura ISSUED o PAID admite nota de crédito (estado actual "+string(invRec.Status)+")")
	}

	outstanding, err := uc.outstandingAmount(*invRec)
	if err != nil {
		return nil, err
	}
	if in.Amount.GreaterThan(outstanding) {
		return nil, domain.NewError(domain.CodeValidation,
			"el importe excede el saldo corregible de la factura ("+outstanding.StringFixed(2)+")")
	}

	now := time.Now()
	note, err := entity.NewCreditNote(uuid.New().String(), in.InvoiceID, performedBy, in.Amount, in.Reason, now)
	if err != nil {
		return nil, domain.WrapError(domain.CodeValidation, "crear nota de crédito", err)
	}
	if err := uc.creditNoteRepo.Create(note.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir nota de crédito", err)
	}
	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "credit_note",
		EntityID:    note.ID(),
		Action:      "create",
		PerformedBy: performedBy,
		After:       map[string]string{"invoice_id": note.InvoiceID(), "amount": note.Amount().StringFixed(2)},
		At:          now,
	})
	return creditNoteToResponse(note.Record()), nil
}

// Issue emite la nota de crédito (irreversible). Si la factura referenciada
// está PAID y las notas emitidas cubren su total, la factura pasa a REFUNDED.
func (uc *CreditNoteUseCase) Issue(ctx context.Context, companyID, creditNoteID, performedBy string) (*dto.CreditNoteResponse, error) {
	if err := uc.authorize(ctx, performedBy); err != nil {
		return nil, err
	}

	rec, err := uc.creditNoteRepo.GetByID(creditNoteID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar nota de crédito", err)
	}
	if rec == nil {
		return nil, domain.NewError(domain.CodeNotFound, "nota de crédito no encontrada")
	}
	invRec, err := uc.invoiceRepo.GetByID(rec.InvoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar factura", err)
	}
	if invRec == nil {
		return nil, domain.NewError(domain.CodeInternal, "la nota referencia una factura inexistente (dato corrupto)")
	}
	if invRec.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeForbidden, "la nota de crédito pertenece a otra empresa")
	}

	note, err := entity.RehydrateCreditNote(*rec)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "registro de nota de crédito corrupto", err)
	}
	now := time.Now()
	if err := note.Issue(now); err != nil {
		return nil, domain.WrapError(domain.CodeConflict, "emitir nota de crédito", err)
	}
	if err := uc.creditNoteRepo.Update(note.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir nota de crédito emitida", err)
	}

	uc.settleRefund(ctx, *invRec, note.Record(), performedBy, now)

	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "credit_note",
		EntityID:    note.ID(),
		Action:      "issue",
		PerformedBy: performedBy,
		After:       map[string]string{"invoice_id": note.InvoiceID(), "amount": note.Amount().StringFixed(2)},
		At:          now,
	})
	return creditNoteToResponse(note.Record()), nil
}

// Get devuelve una nota de crédito del ámbito de la empresa.
func (uc *CreditNoteUseCase) Get(ctx context.Context, companyID, creditNoteID string) (*dto.CreditNoteResponse, error) {
	rec, err := uc.creditNoteRepo.GetByID(creditNoteID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar nota de crédito", err)
	}
	if rec == nil {
		return nil, domain.NewError(domain.CodeNotFound, "nota de crédito no encontrada")
	}
	invRec, err := uc.invoiceRepo.GetByID(rec.InvoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar factura", err)
	}
	if invRec == nil || invRec.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeNotFound, "nota de crédito no encontrada")
	}
	return creditNoteToResponse(*rec), nil
}

// ListByInvoice lista las notas de crédito de una factura de la empresa.
func (uc *CreditNoteUseCase) ListByInvoice(ctx context.Context, companyID, invoiceID string) ([]dto.CreditNoteResponse, error) {
	invRec, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar factura", err)
	}
	if invRec == nil || invRec.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeNotFound, "factura no encontrada")
	}
	recs, err := uc.creditNoteRepo.ListByInvoice(invoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "listar notas de crédito", err)
	}
	out := make([]dto.CreditNoteResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *creditNoteToResponse(rec))
	}
	return out, nil
}

// outstandingAmount es el total de la factura menos las notas ya emitidas.
func (uc *CreditNoteUseCase) outstandingAmount(invRec entity.InvoiceRecord) (decimal.Decimal, error) {
	notes, err := uc.creditNoteRepo.ListByInvoice(invRec.ID)
	if err != nil {
		return decimal.Zero, domain.WrapError(domain.CodeInternal, "listar notas de crédito", err)
	}
	remaining := invRec.Total
	for _, n := range notes {
		if n.IssuedAt != nil {
			remaining = remaining.Sub(n.Amount)
		}
	}
	return remaining, nil
}

// settleRefund completa el flujo de devolución: si la factura está PAID y las
// notas emitidas cubren su total, transiciona a REFUNDED. Un fallo aquí se
// loguea a través del sink de auditoría del propio caso de uso; la nota ya
// quedó emitida y el estado de la factura puede corregirse después.
func (uc *CreditNoteUseCase) settleRefund(ctx context.Context, invRec entity.InvoiceRecord, note entity.CreditNoteRecord, performedBy string, now time.Time) {
	if invRec.Status != entity.InvoiceStatusPaid {
		return
	}
	outstanding, err := uc.outstandingAmount(invRec)
	if err != nil || outstanding.IsPositive() {
		return
	}
	inv, err := entity.RehydrateInvoice(invRec)
	if err != nil {
		return
	}
	if err := inv.Refund(now); err != nil {
		return
	}
	if err := uc.invoiceRepo.Update(inv.Record()); err != nil {
		return
	}
	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "invoice",
		EntityID:    invRec.ID,
		Action:      "refund",
		PerformedBy: performedBy,
		Before:      map[string]string{"status": string(invRec.Status)},
		After:       map[string]string{"status": string(entity.InvoiceStatusRefunded), "credit_note_id": note.ID},
		At:          now,
	})
}

func (uc *CreditNoteUseCase) recordAudit(ctx context.Context, entry AuditEntry) {
	if uc.audit == nil {
		return
	}
	if err := uc.audit.Record(ctx, entry); err != nil {
		log.Warn().Err(err).
			Str("entity_id", entry.EntityID).
			Str("action", entry.Action).
			Msg("fallo al registrar auditoría (ignorado)")
	}
}

func creditNoteToResponse(rec entity.CreditNoteRecord) *dto.CreditNoteResponse {
	return &dto.CreditNoteResponse{
		ID:        rec.ID,
		InvoiceID: rec.InvoiceID,
		Amount:    rec.Amount,
		Reason:    rec.Reason,
		IssuedAt:  rec.IssuedAt,
		CreatedBy: rec.CreatedBy,
		CreatedAt: rec.CreatedAt,
	}
}
