// Package billing contiene los casos de uso del ciclo de vida de documentos
// fiscales: borrador, emisión, pago, anulación, notas de crédito y exports.
package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	domainbilling "github.com/pataspro/petshop-api/internal/domain/billing"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

// Conjuntos de roles por operación. Decisión por conjunto, no por string.
var (
	rolesIssue = entity.NewRoleSet(entity.RoleManager, entity.RoleAccountant, entity.RoleOwner)
	rolesPay   = entity.NewRoleSet(entity.RoleClerk, entity.RoleManager, entity.RoleAccountant, entity.RoleOwner)
	rolesVoid  = entity.NewRoleSet(entity.RoleManager, entity.RoleAccountant, entity.RoleOwner)
	// rolesPayOverride permite re-registrar el pago de una factura ya PAID
	// (corrección de fecha/método con rol elevado).
	rolesPayOverride = entity.NewRoleSet(entity.RoleOwner, entity.RoleAccountant)
)

// InvoiceLifecycleUseCase orquesta borrador → emisión → pago → anulación.
// No serializa llamadas concurrentes sobre la misma factura: esa corrección
// recae en el aislamiento del almacén; la unicidad de numeración recae por
// completo en la transacción atómica del NumberGenerator.
type InvoiceLifecycleUseCase struct {
	invoiceRepo     repository.InvoiceRepository
	companyRepo     repository.CompanyRepository
	storeRepo       repository.StoreRepository
	customerRepo    repository.CustomerRepository
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	numbers         NumberGenerator
	roles           RoleResolver
	audit           AuditSink
	issuance        *domainbilling.IssuanceService
}

// NewInvoiceLifecycleUseCase construye el caso de uso con sus puertos.
func NewInvoiceLifecycleUseCase(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	storeRepo repository.StoreRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	transactionRepo repository.TransactionRepository,
	numbers NumberGenerator,
	roles RoleResolver,
	audit AuditSink,
) *InvoiceLifecycleUseCase {
	return &InvoiceLifecycleUseCase{
		invoiceRepo:     invoiceRepo,
		companyRepo:     companyRepo,
		storeRepo:       storeRepo,
		customerRepo:    customerRepo,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		numbers:         numbers,
		roles:           roles,
		audit:           audit,
		issuance:        domainbilling.NewIssuanceService(),
	}
}

// authorize resuelve los roles del usuario y exige intersección con allowed.
func (uc *InvoiceLifecycleUseCase) authorize(ctx context.Context, userID string, allowed entity.RoleSet) (entity.RoleSet, error) {
	if userID == "" {
		return nil, domain.NewError(domain.CodeUnauthorized, "identidad del solicitante ausente")
	}
	roles, err := uc.roles.ResolveRoles(ctx, userID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeUnauthorized, "no se pudieron resolver los roles del solicitante", err)
	}
	if !roles.ContainsAny(allowed) {
		return nil, domain.NewError(domain.CodeForbidden, "el rol del solicitante no permite esta operación")
	}
	return roles, nil
}

// loadInvoice carga y rehidrata la factura del ámbito de la empresa.
func (uc *InvoiceLifecycleUseCase) loadInvoice(companyID, invoiceID string) (*entity.Invoice, error) {
	rec, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar factura", err)
	}
	if rec == nil {
		return nil, domain.NewError(domain.CodeNotFound, "factura no encontrada")
	}
	if rec.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeForbidden, "la factura pertenece a otra empresa")
	}
	inv, err := entity.RehydrateInvoice(*rec)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "registro de factura corrupto", err)
	}
	return inv, nil
}

// recordAudit registra la entrada; un fallo se loguea y se traga.
func (uc *InvoiceLifecycleUseCase) recordAudit(ctx context.Context, entry AuditEntry) {
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

// invoiceToResponse mapea el agregado a DTO con cifras por línea.
func invoiceToResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	rec := inv.Record()
	lines := make([]dto.InvoiceLineResponse, 0, len(rec.Lines))
	for _, l := range rec.Lines {
		lines = append(lines, dto.InvoiceLineResponse{
			Description:    l.Description,
			ProductID:      l.ProductID,
			ServiceContext: l.ServiceContext,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			VATRate:        l.VATRate,
			Subtotal:       l.Subtotal(),
			VATAmount:      l.VATAmount(),
			Total:          l.Total(),
		})
	}
	return &dto.InvoiceResponse{
		ID:              rec.ID,
		CompanyID:       rec.CompanyID,
		StoreID:         rec.StoreID,
		Number:          rec.Number,
		BuyerCustomerID: rec.BuyerCustomerID,
		Status:          string(rec.Status),
		Lines:           lines,
		Subtotal:        rec.Subtotal,
		VATTotal:        rec.VATTotal,
		Total:           rec.Total,
		IssuedAt:        rec.IssuedAt,
		PaidAt:          rec.PaidAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func statusDiff(before, after entity.InvoiceRecord) (map[string]string, map[string]string) {
	b := map[string]string{"status": string(before.Status), "number": before.Number}
	a := map[string]string{"status": string(after.Status), "number": after.Number}
	return b, a
}

// validationError junta la lista de errores del veredicto en un solo error
// de validación legible.
func validationError(check domainbilling.IssuanceCheck) *domain.Error {
	return domain.NewError(domain.CodeValidation,
		fmt.Sprintf("la factura no puede emitirse: %s", strings.Join(check.Errors, "; ")))
}
