package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/domain/entity"
)

var _ billing.ExportWriter = (*JSONWriter)(nil)

// JSONWriter serializa un export financiero como un único documento JSON con
// los importes como cadenas de dos decimales, nunca como float.
type JSONWriter struct{}

// NewJSONWriter crea el escritor JSON.
func NewJSONWriter() *JSONWriter { return &JSONWriter{} }

// Format devuelve el formato que produce este escritor.
func (w *JSONWriter) Format() entity.ExportFormat { return entity.ExportFormatJSON }

type jsonExport struct {
	Company      jsonCompany       `json:"empresa"`
	PeriodStart  *string           `json:"periodo_inicio,omitempty"`
	PeriodEnd    *string           `json:"periodo_fin,omitempty"`
	Invoices     []jsonInvoice     `json:"facturas"`
	CreditNotes  []jsonCreditNote  `json:"notas_credito"`
	Transactions []jsonTransaction `json:"transacciones"`
}

type jsonCompany struct {
	Name string `json:"nombre"`
	NIF  string `json:"nif"`
}

type jsonInvoice struct {
	ID       string     `json:"id"`
	Number   string     `json:"numero"`
	Status   string     `json:"estado"`
	IssuedAt *string    `json:"emitida_el,omitempty"`
	PaidAt   *string    `json:"pagada_el,omitempty"`
	Subtotal string     `json:"base"`
	VATTotal string     `json:"iva"`
	Total    string     `json:"total"`
	Lines    []jsonLine `json:"lineas"`
}

type jsonLine struct {
	Description string `json:"descripcion"`
	Quantity    int64  `json:"cantidad"`
	UnitPrice   string `json:"precio_unitario"`
	VATRate     string `json:"tipo_iva"`
	Total       string `json:"total"`
}

type jsonCreditNote struct {
	ID        string  `json:"id"`
	InvoiceID string  `json:"factura_id"`
	Amount    string  `json:"importe"`
	Reason    string  `json:"motivo,omitempty"`
	IssuedAt  *string `json:"emitida_el,omitempty"`
}

type jsonTransaction struct {
	ID            string `json:"id"`
	StoreID       string `json:"tienda_id"`
	InvoiceID     string `json:"factura_id"`
	TotalAmount   string `json:"total"`
	PaymentStatus string `json:"estado_pago"`
	CreatedAt     string `json:"creada_el"`
}

// Write serializa los documentos del período.
func (w *JSONWriter) Write(data billing.ExportData) ([]byte, string, error) {
	out := jsonExport{
		Company: jsonCompany{},
		// Slices vacíos en vez de null para que el consumidor no tenga que
		// distinguir ausencia de vacío.
		Invoices:     []jsonInvoice{},
		CreditNotes:  []jsonCreditNote{},
		Transactions: []jsonTransaction{},
		PeriodStart:  isoDate(data.PeriodStart),
		PeriodEnd:    isoDate(data.PeriodEnd),
	}
	if data.Company != nil {
		out.Company = jsonCompany{Name: data.Company.Name, NIF: data.Company.NIF}
	}
	for _, inv := range data.Invoices {
		ji := jsonInvoice{
			ID:       inv.ID,
			Number:   inv.Number,
			Status:   string(inv.Status),
			IssuedAt: isoTime(inv.IssuedAt),
			PaidAt:   isoTime(inv.PaidAt),
			Subtotal: inv.Subtotal.StringFixed(2),
			VATTotal: inv.VATTotal.StringFixed(2),
			Total:    inv.Total.StringFixed(2),
			Lines:    []jsonLine{},
		}
		for _, l := range inv.Lines {
			ji.Lines = append(ji.Lines, jsonLine{
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice.StringFixed(2),
				VATRate:     l.VATRate.StringFixed(2),
				Total:       l.Total().StringFixed(2),
			})
		}
		out.Invoices = append(out.Invoices, ji)
	}
	for _, cn := range data.CreditNotes {
		out.CreditNotes = append(out.CreditNotes, jsonCreditNote{
			ID:        cn.ID,
			InvoiceID: cn.InvoiceID,
			Amount:    cn.Amount.StringFixed(2),
			Reason:    cn.Reason,
			IssuedAt:  isoTime(cn.IssuedAt),
		})
	}
	for _, tx := range data.Transactions {
		out.Transactions = append(out.Transactions, jsonTransaction{
			ID:            tx.ID,
			StoreID:       tx.StoreID,
			InvoiceID:     tx.InvoiceID,
			TotalAmount:   tx.TotalAmount.StringFixed(2),
			PaymentStatus: string(tx.PaymentStatus),
			CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
		})
	}

	content, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal json export: %w", err)
	}
	return content, ".json", nil
}

func isoDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func isoTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
