package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	domainbilling "github.com/pataspro/petshop-api/internal/domain/billing"
	"github.com/pataspro/petshop-api/internal/domain/entity"
)

// CreateDraft crea una factura en DRAFT con número placeholder. El número
// fiscal definitivo lo asigna la emisión; mientras tanto el placeholder
// mantiene el invariante de número no vacío sin consumir secuencial.
func (uc *InvoiceLifecycleUseCase) CreateDraft(ctx context.Context, companyID string, in dto.CreateDraftRequest, performedBy string) (*dto.InvoiceResponse, error) {
	if _, err := uc.authorize(ctx, performedBy, rolesPay); err != nil {
		return nil, err
	}
	if in.StoreID == "" {
		return nil, domain.NewError(domain.CodeValidation, "tienda requerida")
	}

	store, err := uc.storeRepo.GetByID(in.StoreID)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "cargar tienda", err)
	}
	if store == nil || store.CompanyID != companyID {
		return nil, domain.NewError(domain.CodeNotFound, "tienda no encontrada")
	}

	if in.BuyerCustomerID != "" {
		customer, err := uc.customerRepo.GetByID(in.BuyerCustomerID)
		if err != nil {
			return nil, domain.WrapError(domain.CodeInternal, "cargar cliente", err)
		}
		if customer == nil || customer.CompanyID != companyID {
			return nil, domain.NewError(domain.CodeNotFound, "cliente no encontrado")
		}
	}

	now := time.Now()
	id := uuid.New().String()
	inv, err := entity.NewInvoice(id, companyID, in.StoreID, now)
	if err != nil {
		return nil, domain.WrapError(domain.CodeValidation, "crear borrador", err)
	}
	if err := inv.SetNumber("DRAFT-" + id[:8]); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "asignar placeholder", err)
	}
	if in.BuyerCustomerID != "" {
		if err := inv.SetBuyer(in.BuyerCustomerID); err != nil {
			return nil, domain.WrapError(domain.CodeValidation, "asignar comprador", err)
		}
	}

	for _, lineIn := range in.Lines {
		line, err := uc.buildLine(companyID, lineIn)
		if err != nil {
			return nil, err
		}
		if err := inv.AddLine(line); err != nil {
			return nil, domain.WrapError(domain.CodeValidation, "añadir línea", err)
		}
	}

	if err := uc.invoiceRepo.Create(inv.Record()); err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "persistir borrador", err)
	}
	uc.recordAudit(ctx, AuditEntry{
		EntityType:  "invoice",
		EntityID:    inv.ID(),
		Action:      "create_draft",
		PerformedBy: performedBy,
		After:       map[string]string{"status": string(inv.Status()), "number": inv.Number()},
		At:          now,
	})
	return invoiceToResponse(inv), nil
}

// buildLine valida la línea contra el catálogo: con ProductID el precio y el
// IVA se toman del producto cuando vienen a cero (solo lectura).
func (uc *InvoiceLifecycleUseCase) buildLine(companyID string, in dto.InvoiceLineInput) (entity.InvoiceLine, error) {
	line := entity.InvoiceLine{
		Description:    in.Description,
		ProductID:      in.ProductID,
		ServiceContext: in.ServiceContext,
		Quantity:       in.Quantity,
		UnitPrice:      in.UnitPrice,
		VATRate:        in.VATRate,
	}
	if in.ProductID != "" {
		product, err := uc.productRepo.GetByID(in.ProductID)
		if err != nil {
			return entity.InvoiceLine{}, domain.WrapError(domain.CodeInternal, "cargar producto", err)
		}
		if product == nil {
			return entity.InvoiceLine{}, domain.NewError(domain.CodeNotFound, "producto no encontrado: "+in.ProductID)
		}
		if product.CompanyID != companyID {
			return entity.InvoiceLine{}, domain.NewError(domain.CodeForbidden, "el producto pertenece a otra empresa")
		}
		if line.Description == "" {
			line.Description = product.Name
		}
		if line.UnitPrice.IsZero() {
			line.UnitPrice = product.Price
		}
		if line.VATRate.IsZero() {
			line.VATRate = product.VATRate
		}
	}
	rate, err := domainbilling.NewVATRate(line.VATRate)
	if err != nil {
		return entity.InvoiceLine{}, domain.WrapError(domain.CodeValidation, "línea inválida", err)
	}
	line.VATRate = rate.Decimal()
	if err := line.Validate(); err != nil {
		return entity.InvoiceLine{}, domain.WrapError(domain.CodeValidation, "línea inválida", err)
	}
	return line, nil
}

// GetInvoice devuelve una factura del ámbito de la empresa.
func (uc *InvoiceLifecycleUseCase) GetInvoice(ctx context.Context, companyID, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.loadInvoice(companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	return invoiceToResponse(inv), nil
}

// ListInvoices lista facturas de la empresa con paginación.
func (uc *InvoiceLifecycleUseCase) ListInvoices(ctx context.Context, companyID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	recs, err := uc.invoiceRepo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInternal, "listar facturas", err)
	}
	items := make([]dto.InvoiceResponse, 0, len(recs))
	for _, rec := range recs {
		inv, err := entity.RehydrateInvoice(rec)
		if err != nil {
			return nil, domain.WrapError(domain.CodeInternal, "registro de factura corrupto", err)
		}
		items = append(items, *invoiceToResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
