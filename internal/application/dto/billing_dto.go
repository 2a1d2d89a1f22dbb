package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineInput línea de factura en peticiones de borrador.
// ProductID y ServiceContext son mutuamente exclusivos; con ProductID el
// precio y el IVA se toman del catálogo si vienen a cero.
type InvoiceLineInput struct {
	Description    string          `json:"description"`
	ProductID      string          `json:"product_id,omitempty"`
	ServiceContext string          `json:"service_context,omitempty"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	VATRate        decimal.Decimal `json:"vat_rate"`
}

// CreateDraftRequest petición de creación de borrador de factura.
type CreateDraftRequest struct {
	StoreID         string             `json:"store_id"`
	BuyerCustomerID string             `json:"buyer_customer_id,omitempty"`
	Lines           []InvoiceLineInput `json:"lines"`
}

// MarkPaidRequest petición de registro de pago.
type MarkPaidRequest struct {
	PaymentMethod     string     `json:"payment_method"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	ExternalReference string     `json:"external_reference,omitempty"`
}

// VoidRequest petición de anulación.
type VoidRequest struct {
	Reason string `json:"reason"`
}

// InvoiceLineResponse línea con cifras calculadas.
type InvoiceLineResponse struct {
	Description    string          `json:"description"`
	ProductID      string          `json:"product_id,omitempty"`
	ServiceContext string          `json:"service_context,omitempty"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	VATRate        decimal.Decimal `json:"vat_rate"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	Total          decimal.Decimal `json:"total"`
}

// InvoiceResponse factura completa en respuestas.
type InvoiceResponse struct {
	ID              string                `json:"id"`
	CompanyID       string                `json:"company_id"`
	StoreID         string                `json:"store_id"`
	Number          string                `json:"number"`
	BuyerCustomerID string                `json:"buyer_customer_id,omitempty"`
	Status          string                `json:"status"`
	Lines           []InvoiceLineResponse `json:"lines"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	VATTotal        decimal.Decimal       `json:"vat_total"`
	Total           decimal.Decimal       `json:"total"`
	IssuedAt        *time.Time            `json:"issued_at,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// InvoiceListResponse listado paginado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateCreditNoteRequest petición de nota de crédito.
type CreateCreditNoteRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

// CreditNoteResponse nota de crédito en respuestas.
type CreditNoteResponse struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
	IssuedAt  *time.Time      `json:"issued_at,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateTransactionRequest petición de transacción de punto de venta.
type CreateTransactionRequest struct {
	StoreID   string                 `json:"store_id"`
	InvoiceID string                 `json:"invoice_id"`
	Lines     []TransactionLineInput `json:"lines"`
}

// TransactionLineInput línea de transacción (producto XOR servicio).
type TransactionLineInput struct {
	ProductID      string          `json:"product_id,omitempty"`
	ServiceContext string          `json:"service_context,omitempty"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// TransactionResponse transacción en respuestas.
type TransactionResponse struct {
	ID            string          `json:"id"`
	StoreID       string          `json:"store_id"`
	InvoiceID     string          `json:"invoice_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateExportRequest petición de export financiero.
type CreateExportRequest struct {
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	Format      string     `json:"format"` // CSV, JSON, XML
}

// ExportResponse export financiero en respuestas.
type ExportResponse struct {
	ID            string     `json:"id"`
	CompanyID     string     `json:"company_id"`
	PeriodStart   *time.Time `json:"period_start,omitempty"`
	PeriodEnd     *time.Time `json:"period_end,omitempty"`
	Format        string     `json:"format"`
	FilePath      string     `json:"file_path,omitempty"`
	SFTPReference string     `json:"sftp_reference,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
