package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/domain/entity"
)

var _ billing.ExportWriter = (*CSVWriter)(nil)

// CSVWriter serializa un export financiero como CSV plano: una fila por
// documento, con el tipo en la primera columna. Es el formato que esperan
// las asesorías que trabajan con hojas de cálculo.
type CSVWriter struct{}

// NewCSVWriter crea el escritor CSV.
func NewCSVWriter() *CSVWriter { return &CSVWriter{} }

// Format devuelve el formato que produce este escritor.
func (w *CSVWriter) Format() entity.ExportFormat { return entity.ExportFormatCSV }

// Write serializa los documentos del período.
func (w *CSVWriter) Write(data billing.ExportData) ([]byte, string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	header := []string{"tipo", "id", "numero", "fecha", "estado", "base", "iva", "total"}
	if err := cw.Write(header); err != nil {
		return nil, "", fmt.Errorf("write csv header: %w", err)
	}

	for _, inv := range data.Invoices {
		row := []string{
			"FACTURA", inv.ID, inv.Number, formatDate(inv.IssuedAt), string(inv.Status),
			inv.Subtotal.StringFixed(2), inv.VATTotal.StringFixed(2), inv.Total.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return nil, "", fmt.Errorf("write csv invoice: %w", err)
		}
	}
	for _, cn := range data.CreditNotes {
		row := []string{
			"NOTA_CREDITO", cn.ID, cn.InvoiceID, formatDate(cn.IssuedAt), creditNoteState(cn),
			"", "", cn.Amount.Neg().StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return nil, "", fmt.Errorf("write csv credit note: %w", err)
		}
	}
	for _, tx := range data.Transactions {
		row := []string{
			"TRANSACCION", tx.ID, tx.InvoiceID, tx.CreatedAt.Format("2006-01-02"), string(tx.PaymentStatus),
			"", "", tx.TotalAmount.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return nil, "", fmt.Errorf("write csv transaction: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), ".csv", nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func creditNoteState(cn entity.CreditNoteRecord) string {
	if cn.IssuedAt != nil {
		return "EMITIDA"
	}
	return "BORRADOR"
}
