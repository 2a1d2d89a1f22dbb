package export

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/domain/entity"
)

var _ billing.ExportWriter = (*XMLWriter)(nil)

// XMLWriter serializa un export financiero como fichero de auditoría XML al
// estilo SAF-T (PT): cabecera con el emisor y SourceDocuments con facturas,
// notas de crédito y pagos. No es el esquema oficial completo, pero conserva
// su estructura para que un import posterior sea mecánico.
type XMLWriter struct{}

// NewXMLWriter crea el escritor XML.
func NewXMLWriter() *XMLWriter { return &XMLWriter{} }

// Format devuelve el formato que produce este escritor.
func (w *XMLWriter) Format() entity.ExportFormat { return entity.ExportFormatXML }

// Write serializa los documentos del período.
func (w *XMLWriter) Write(data billing.ExportData) ([]byte, string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("AuditFile")

	header := root.CreateElement("Header")
	if data.Company != nil {
		header.CreateElement("CompanyName").SetText(data.Company.Name)
		header.CreateElement("TaxRegistrationNumber").SetText(data.Company.NIF)
	}
	header.CreateElement("CurrencyCode").SetText("EUR")
	if data.PeriodStart != nil {
		header.CreateElement("StartDate").SetText(data.PeriodStart.Format("2006-01-02"))
	}
	if data.PeriodEnd != nil {
		header.CreateElement("EndDate").SetText(data.PeriodEnd.Format("2006-01-02"))
	}

	source := root.CreateElement("SourceDocuments")

	sales := source.CreateElement("SalesInvoices")
	sales.CreateElement("NumberOfEntries").SetText(fmt.Sprintf("%d", len(data.Invoices)))
	for _, inv := range data.Invoices {
		el := sales.CreateElement("Invoice")
		el.CreateElement("InvoiceNo").SetText(inv.Number)
		el.CreateElement("InvoiceStatus").SetText(string(inv.Status))
		if inv.IssuedAt != nil {
			el.CreateElement("InvoiceDate").SetText(inv.IssuedAt.Format("2006-01-02"))
		}
		if inv.BuyerCustomerID != "" {
			el.CreateElement("CustomerID").SetText(inv.BuyerCustomerID)
		}
		for idx, l := range inv.Lines {
			line := el.CreateElement("Line")
			line.CreateElement("LineNumber").SetText(fmt.Sprintf("%d", idx+1))
			line.CreateElement("Description").SetText(l.Description)
			line.CreateElement("Quantity").SetText(fmt.Sprintf("%d", l.Quantity))
			line.CreateElement("UnitPrice").SetText(l.UnitPrice.StringFixed(2))
			tax := line.CreateElement("Tax")
			tax.CreateElement("TaxType").SetText("IVA")
			tax.CreateElement("TaxPercentage").SetText(l.VATRate.StringFixed(2))
			line.CreateElement("CreditAmount").SetText(l.Subtotal().StringFixed(2))
		}
		totals := el.CreateElement("DocumentTotals")
		totals.CreateElement("TaxPayable").SetText(inv.VATTotal.StringFixed(2))
		totals.CreateElement("NetTotal").SetText(inv.Subtotal.StringFixed(2))
		totals.CreateElement("GrossTotal").SetText(inv.Total.StringFixed(2))
	}

	notes := source.CreateElement("CreditNotes")
	notes.CreateElement("NumberOfEntries").SetText(fmt.Sprintf("%d", len(data.CreditNotes)))
	for _, cn := range data.CreditNotes {
		el := notes.CreateElement("CreditNote")
		el.CreateElement("CreditNoteID").SetText(cn.ID)
		el.CreateElement("InvoiceReference").SetText(cn.InvoiceID)
		el.CreateElement("Amount").SetText(cn.Amount.StringFixed(2))
		if cn.Reason != "" {
			el.CreateElement("Reason").SetText(cn.Reason)
		}
		if cn.IssuedAt != nil {
			el.CreateElement("IssueDate").SetText(cn.IssuedAt.Format("2006-01-02"))
		}
	}

	payments := source.CreateElement("Payments")
	payments.CreateElement("NumberOfEntries").SetText(fmt.Sprintf("%d", len(data.Transactions)))
	for _, tx := range data.Transactions {
		el := payments.CreateElement("Payment")
		el.CreateElement("PaymentRefNo").SetText(tx.ID)
		el.CreateElement("InvoiceReference").SetText(tx.InvoiceID)
		el.CreateElement("Amount").SetText(tx.TotalAmount.StringFixed(2))
		el.CreateElement("Status").SetText(string(tx.PaymentStatus))
		el.CreateElement("TransactionDate").SetText(tx.CreatedAt.Format(time.RFC3339))
	}

	doc.Indent(2)
	content, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("serialize xml export: %w", err)
	}
	return content, ".xml", nil
}
