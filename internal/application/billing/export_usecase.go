package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	domainbilling "github.com/pataspro/petshop-api/internal/domain/billing"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
	"github.com/rs/zerolog/log"
)

// rolesExport restringe los exports financieros a perfiles contables.
var rolesExport = entity.NewRoleSet(entity.RoleAccountant, entity.RoleOwner)

// ExportUseCase genera exports financieros: agrupa las facturas del período
// con sus transacciones y notas de crédito, serializa al formato pedido y
// fija la ubicación resultante en el agregado.
type ExportUseCase struct {
	exportRepo      repository.FinancialExportRepository
	invoiceRepo     repository.InvoiceRepository
	transactionRepo repository.TransactionRepository
	creditNoteRepo  repository.CreditNoteRepository
	companyRepo     repository.CompanyRepository
	writers         map[entity.ExportFormat]ExportWriter
	storage         ExportStorage
	roles           RoleResolver
	audit           AuditSink
}

// NewExportUseCase construye el caso de uso registrando un writer por formato.
func NewExportUseCase(
	exportRepo repository.FinancialExportRepository,
	invoiceRepo repository.InvoiceRepository,
	transactionRepo repository.TransactionRepository,
	creditNoteRepo repository.CreditNoteRepository,
	companyRepo repository.CompanyRepository,
	writers []ExportWriter,
	storage ExportStorage,
	roles RoleResolver,
	audit AuditSink,
) *ExportUseCase {
	byFormat := make(map[entity.ExportFormat]ExportWriter, len(writers))
	for _, w := range writers {
		byFormat[w.Format()] = w
	}
	return &ExportUseCase{
		exportRepo:      exportRepo,
		invoiceRepo:     invoiceRepo,
		transactionRepo: transactionRepo,
		creditNoteRepo:  creditNoteRepo,
		companyRepo:     companyRepo,
		writers:         byFormat,
		storage:         storage,
		roles:           roles,
		audit:           audit,
	}
}

func (uc *ExportUseCase) authorize(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.NewError(domain.CodeUnauthorized, "identidad del solicitante ausente")
	}
	roles, err := uc.roles.ResolveRoles(ctx, userID)
	if err != nil {
		return domain.WrapError(domain.CodeUnauthorized, "no se pudieron resolver los roles del solicitante", err)
	}
	if !roles.ContainsAny(rolesExport) {
		return domain.NewError(domain.CodeForbidden, "el rol del solicitante no permite generar exports")
	}
	return nil
}

// Create genera el export completo en una sola operación: crea el agregado,
// recolecta los documentos del período, serializa, almacena y fija la
// ubicación. El agregado queda inmutable desde ese momento.
func (uc *ExportUseCase) Create(ctx context.Context, companyID string, in dto.CreateExportRequest, performedBy string) (*dto.ExportResponse, error) {
	if err := uc.authorize(ctx, performedBy); err != nil {
		return nil, err
	}

	format := entity.ExportFormat(strings.ToUpper(in.Format))
	writer, ok := uc.writers[format]
	if !ok {
		return nil, domain.NewError(domain.CodeValidation, "formato de export no soportado: "+in.Format)
	}

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar empresa", err)
	}
	if company == nil {
		return nil, domain.NewError(domain.CodeNotFound, "empresa no encontrada")
	}

	period, err := domainbilling.NewPeriod(in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return nil, domain.WrapError(domain.CodeValidation, "período del export inválido", err)
	}

	now := time.Now()
	exp, err := entity.NewFinancialExport(uuid.New().String(), companyID, performedBy, period.Start(), period.End(), format, now)
	if err != nil {
		return nil, domain.WrapError(domain.CodeValidation, "crear export", err)
	}
	if err := uc.exportRepo.Create(exp.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir export", err)
	}

	data, err := uc.collect(company, period)
	if err != nil {
		return nil, err
	}
	content, ext, err := writer.Write(data)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "serializar export", err)
	}
	location, err := uc.storage.Store(content, exportFileName(company, format, now, ext))
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "almacenar export", err)
	}

	if strings.HasPrefix(location, "sftp://") {
		err = exp.MarkGeneratedSFTP(location)
	} else {
		err = exp.MarkGeneratedFile(location)
	}
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "fijar ubicación del export", err)
	}
	if err := uc.exportRepo.Update(exp.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir export generado", err)
	}

	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "financial_export",
		EntityID:    exp.ID(),
		Action:      "generate",
		PerformedBy: performedBy,
		After: map[string]string{
			"format":   string(format),
			"location": location,
			"invoices": fmt.Sprintf("%d", len(data.Invoices)),
		},
		At: now,
	})
	return exportToResponse(exp.Record()), nil
}

// Get devuelve un export del ámbito de la empresa.
func (uc *ExportUseCase) Get(ctx context.Context, companyID, exportID string) (*dto.ExportResponse, error) {
	rec, err := uc.exportRepo.GetByID(exportID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar export", err)
	}
	if rec == nil || rec.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeNotFound, "export no encontrado")
	}
	return exportToResponse(*rec), nil
}

// List lista los exports de la empresa con paginación.
func (uc *ExportUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.ExportResponse, error) {
	page.DefaultPage()
	recs, err := uc.exportRepo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "listar exports", err)
	}
	out := make([]dto.ExportResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *exportToResponse(rec))
	}
	return out, nil
}

// collect reúne facturas del período con sus transacciones y notas de
// crédito. Solo entran documentos emitidos (las DRAFT no son fiscales).
func (uc *ExportUseCase) collect(company *entity.Company, period domainbilling.Period) (ExportData, error) {
	invoices, err := uc.invoiceRepo.ListByPeriod(company.ID, period.Start(), period.End())
	if err != nil {
		return ExportData{}, domain.WrapError(domain.CodeInternal, "listar facturas del período", err)
	}
	data := ExportData{
		Company:     company,
		PeriodStart: period.Start(),
		PeriodEnd:   period.End(),
	}
	for _, inv := range invoices {
		if inv.Status == entity.InvoiceStatusDraft {
			continue
		}
		data.Invoices = append(data.Invoices, inv)
		txs, err := uc.transactionRepo.ListByInvoice(inv.ID)
		if err != nil {
			return ExportData{}, domain.WrapError(domain.CodeInternal, "listar transacciones del período", err)
		}
		data.Transactions = append(data.Transactions, txs...)
		notes, err := uc.creditNoteRepo.ListByInvoice(inv.ID)
		if err != nil {
			return ExportData{}, domain.WrapError(domain.CodeInternal, "listar notas de crédito del período", err)
		}
		data.CreditNotes = append(data.CreditNotes, notes...)
	}
	return data, nil
}

func (uc *ExportUseCase) recordAudit(ctx context.Context, entry AuditEntry) {
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

func exportFileName(company *entity.Company, format entity.ExportFormat, now time.Time, ext string) string {
	return fmt.Sprintf("export_%s_%s_%s%s",
		company.NIF, strings.ToLower(string(format)), now.Format("20060102_150405"), ext)
}

func exportToResponse(rec entity.FinancialExportRecord) *dto.ExportResponse {
	return &dto.ExportResponse{
		ID:            rec.ID,
		CompanyID:     rec.CompanyID,
		PeriodStart:   rec.PeriodStart,
		PeriodEnd:     rec.PeriodEnd,
		Format:        string(rec.Format),
		FilePath:      rec.FilePath,
		SFTPReference: rec.SFTPReference,
		CreatedAt:     rec.CreatedAt,
	}
}
