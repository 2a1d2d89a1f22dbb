package billing

import (
	"context"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/internal/domain/repository"
)

// InvoicePDFUseCase produce la representación imprimible de una factura.
// Solo documentos emitidos: un borrador no es un documento fiscal.
type InvoicePDFUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	generator    InvoicePDFGenerator
	roles        RoleResolver
}

// NewInvoicePDFUseCase construye el caso de uso con sus puertos.
func NewInvoicePDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	generator InvoicePDFGenerator,
	roles RoleResolver,
) *InvoicePDFUseCase {
	return &InvoicePDFUseCase{
		invoiceRepo:  invoiceRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		generator:    generator,
		roles:        roles,
	}
}

// Generate devuelve el PDF de la factura y un nombre de fichero sugerido.
func (uc *InvoicePDFUseCase) Generate(ctx context.Context, companyID, invoiceID, performedBy string) ([]byte, string, error) {
	if performedBy == "" {
		return nil, "", domain.NewError(domain.CodeUnauthorized, "identidad del solicitante ausente")
	}
	roles, err := uc.roles.ResolveRoles(ctx, performedBy)
	if err != nil {
		return nil, "", domain.WrapError(domain.CodeUnauthorized, "no se pudieron resolver los roles del solicitante", err)
	}
	if !roles.ContainsAny(rolesPay) {
		return nil, "", domain.NewError(domain.CodeForbidden, "el rol del solicitante no permite esta operación")
	}

	rec, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, "", domain.WrapError(domain.CodeInternal, "cargar factura", err)
	}
	if rec == nil {
		return nil, "", domain.NewError(domain.CodeNotFound, "factura no encontrada")
	}
	if rec.CompanyID != companyID {
		return nil, "", domain.NewError(domain.CodeForbidden, "la factura pertenece a otra empresa")
	}
	if rec.Status == entity.InvoiceStatusDraft {
		return nil, "", domain.NewError(domain.CodeValidation, "un borrador no tiene representación imprimible")
	}

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, "", domain.WrapError(domain.CodeInternal, "cargar empresa", err)
	}
	if company == nil {
		return nil, "", domain.NewError(domain.CodeNotFound, "empresa no encontrada")
	}

	var buyer *entity.Customer
	if rec.BuyerCustomerID != "" {
		buyer, err = uc.customerRepo.GetByID(rec.BuyerCustomerID)
		if err != nil {
			return nil, "", domain.WrapError(domain.CodeInternal, "cargar cliente", err)
		}
	}

	pdf, err := uc.generator.Generate(InvoicePDFData{Invoice: *rec, Company: company, Buyer: buyer})
	if err != nil {
		return nil, "", domain.WrapError(domain.CodeInternal, "generar PDF", err)
	}
	return pdf, pdfFileName(rec.Number), nil
}

// pdfFileName deriva el nombre del fichero del número fiscal (2024/0001 →
// factura_2024-0001.pdf).
func pdfFileName(number string) string {
	safe := make([]rune, 0, len(number))
	for _, r := range number {
		if r == '/' {
			r = '-'
		}
		safe = append(safe, r)
	}
	return "factura_" + string(safe) + ".pdf"
}
