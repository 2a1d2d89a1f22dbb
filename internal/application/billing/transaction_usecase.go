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
)

// TransactionUseCase gestiona las transacciones de punto de venta ligadas a
// facturas: registro PENDING, cobro manual y devolución.
type TransactionUseCase struct {
	transactionRepo repository.TransactionRepository
	invoiceRepo     repository.InvoiceRepository
	storeRepo       repository.StoreRepository
	roles           RoleResolver
	audit           AuditSink
}

// NewTransactionUseCase construye el caso de uso con sus puertos.
func NewTransactionUseCase(
	transactionRepo repository.TransactionRepository,
	invoiceRepo repository.InvoiceRepository,
	storeRepo repository.StoreRepository,
	roles RoleResolver,
	audit AuditSink,
) *TransactionUseCase {
	return &TransactionUseCase{
		transactionRepo: transactionRepo,
		invoiceRepo:     invoiceRepo,
		storeRepo:       storeRepo,
		roles:           roles,
		audit:           audit,
	}
}

func (uc *TransactionUseCase) authorize(ctx context.Context, userID string, allowed entity.RoleSet) error {
	if userID == "" {
		return domain.NewError(domain.CodeUnauthorized, "identidad del solicitante ausente")
	}
	roles, err := uc.roles.ResolveRoles(ctx, userID)
	if err != nil {
		return domain.WrapError(domain.CodeUnauthorized, "no se pudieron resolver los roles del solicitante", err)
	}
	if !roles.ContainsAny(allowed) {
		return domain.NewError(domain.CodeForbidden, "el rol del solicitante no permite esta operación")
	}
	return nil
}

// Create registra una transacción PENDING contra una factura de la empresa.
// La tienda debe coincidir con la de la factura.
func (uc *TransactionUseCase) Create(ctx context.Context, companyID string, in dto.CreateTransactionRequest, performedBy string) (*dto.TransactionResponse, error) {
	if err := uc.authorize(ctx, performedBy, rolesPay); err != nil {
		return nil, err
	}
	if in.InvoiceID == "" || in.StoreID == "" {
		return nil, domain.NewError(domain.CodeValidation, "transacción requiere tienda y factura")
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
	if invRec.StoreID != in.StoreID {
		return nil, domain.NewError(domain.CodeValidation, "la tienda de la transacción no coincide con la de la factura")
	}

	lines := make([]entity.TransactionLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.TransactionLine{
			ProductID:      l.ProductID,
			ServiceContext: l.ServiceContext,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
		})
	}

	now := time.Now()
	tx, err := entity.NewTransaction(uuid.New().String(), in.StoreID, in.InvoiceID, lines, now)
	if err != nil {
		return nil, domain.WrapError(domain.CodeValidation, "crear transacción", err)
	}
	if err := uc.transactionRepo.Create(tx.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir transacción", err)
	}
	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "transaction",
		EntityID:    tx.ID(),
		Action:      "create",
		PerformedBy: performedBy,
		After: map[string]string{
			"invoice_id":     tx.InvoiceID(),
			"payment_status": string(tx.PaymentStatus()),
			"total_amount":   tx.TotalAmount().StringFixed(2),
		},
		At: now,
	})
	return transactionToResponse(tx.Record()), nil
}

// MarkPaidManual registra el cobro manual: PENDING → PAID_MANUAL.
func (uc *TransactionUseCase) MarkPaidManual(ctx context.Context, companyID, transactionID, performedBy string) (*dto.TransactionResponse, error) {
	return uc.transition(ctx, companyID, transactionID, performedBy, "mark_paid_manual",
		func(tx *entity.Transaction, now time.Time) error { return tx.MarkPaidManual(now) })
}

// Refund registra la devolución: PAID_MANUAL → REFUNDED.
func (uc *TransactionUseCase) Refund(ctx context.Context, companyID, transactionID, performedBy string) (*dto.TransactionResponse, error) {
	return uc.transition(ctx, companyID, transactionID, performedBy, "refund",
		func(tx *entity.Transaction, now time.Time) error { return tx.Refund(now) })
}

func (uc *TransactionUseCase) transition(ctx context.Context, companyID, transactionID, performedBy, action string, apply func(*entity.Transaction, time.Time) error) (*dto.TransactionResponse, error) {
	if err := uc.authorize(ctx, performedBy, rolesPay); err != nil {
		return nil, err
	}
	tx, err := uc.load(companyID, transactionID)
	if err != nil {
		return nil, err
	}
	before := string(tx.PaymentStatus())

	now := time.Now()
	if err := apply(tx, now); err != nil {
		return nil, domain.WrapError(domain.CodeConflict, "transición de transacción", err)
	}
	if err := uc.transactionRepo.Update(tx.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir transacción", err)
	}
	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "transaction",
		EntityID:    tx.ID(),
		Action:      action,
		PerformedBy: performedBy,
		Before:      map[string]string{"payment_status": before},
		After:       map[string]string{"payment_status": string(tx.PaymentStatus())},
		At:          now,
	})
	return transactionToResponse(tx.Record()), nil
}

// Get devuelve una transacción del ámbito de la empresa.
func (uc *TransactionUseCase) Get(ctx context.Context, companyID, transactionID string) (*dto.TransactionResponse, error) {
	tx, err := uc.load(companyID, transactionID)
	if err != nil {
		return nil, err
	}
	return transactionToResponse(tx.Record()), nil
}

// ListByInvoice lista las transacciones de una factura de la empresa.
func (uc *TransactionUseCase) ListByInvoice(ctx context.Context, companyID, invoiceID string) ([]dto.TransactionResponse, error) {
	invRec, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar factura", err)
	}
	if invRec == nil || invRec.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeNotFound, "factura no encontrada")
	}
	recs, err := uc.transactionRepo.ListByInvoice(invoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "listar transacciones", err)
	}
	out := make([]dto.TransactionResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *transactionToResponse(rec))
	}
	return out, nil
}

// load carga la transacción y verifica, vía la factura, el ámbito de empresa.
func (uc *TransactionUseCase) load(companyID, transactionID string) (*entity.Transaction, error) {
	rec, err := uc.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar transacción", err)
	}
	if rec == nil {
		return nil, domain.NewError(domain.CodeNotFound, "transacción no encontrada")
	}
	invRec, err := uc.invoiceRepo.GetByID(rec.InvoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar factura", err)
	}
	if invRec == nil || invRec.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeNotFound, "transacción no encontrada")
	}
	tx, err := entity.RehydrateTransaction(*rec)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "registro de transacción corrupto", err)
	}
	return tx, nil
}

func (uc *TransactionUseCase) recordAudit(ctx context.Context, entry AuditEntry) {
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

func transactionToResponse(rec entity.TransactionRecord) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:            rec.ID,
		StoreID:       rec.StoreID,
		InvoiceID:     rec.InvoiceID,
		TotalAmount:   rec.TotalAmount,
		PaymentStatus: string(rec.PaymentStatus),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}
