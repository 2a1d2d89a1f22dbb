// Package pdf implementa la representación imprimible de una factura emitida.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre empresa + NIF  │  N° Factura + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel / Email                            │
//	│  CLIENTE: Nombre + NIF (o consumidor final)                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | IVA | Subtotal        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Base imponible / IVA / TOTAL                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: estado de pago + leyenda de archivo                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 95, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Generate genera el PDF de la factura y devuelve sus bytes.
func (g *MarotoPDFGenerator) Generate(data appbilling.InvoicePDFData) ([]byte, error) {
	if data.Company == nil {
		return nil, fmt.Errorf("pdf: falta la empresa emisora")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura "+data.Invoice.Number, true).
		WithAuthor(data.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Invoice, data.Company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(data.Company))
	m.AddRows(clienteRow(data.Buyer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(data.Invoice.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(data.Invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(data.Invoice)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre + NIF (izq) y N° Factura + fecha de emisión (der).
func headerRow(inv entity.InvoiceRecord, company *entity.Company) core.Row {
	fecha := ""
	if inv.IssuedAt != nil {
		fecha = inv.IssuedAt.Format("02/01/2006")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIF: "+company.NIF, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// emisorRow: datos de contacto del emisor.
func emisorRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(company.Address, "—"),
				nonEmpty(company.Phone, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// clienteRow: datos del comprador; nil significa consumidor final sin
// identificar.
func clienteRow(buyer *entity.Customer) core.Row {
	if buyer == nil {
		return row.New(10).Add(
			col.New(12).Add(
				text.New("CLIENTE", props.Text{
					Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
				}),
				text.New("Consumidor final", props.Text{Size: 9, Top: 6, Color: colorGray}),
			),
		)
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(buyer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("NIF: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(buyer.NIF, "—"),
				nonEmpty(buyer.Email, "—"),
				nonEmpty(buyer.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Subtotal", 3, align.Right),
	)
}

// tableLineRows: una fila por línea de factura.
func tableLineRows(lines []entity.InvoiceLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				l.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				l.UnitPrice.StringFixed(2)+" €",
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				l.VATRate.StringFixed(0)+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				l.Subtotal().StringFixed(2)+" €",
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(inv entity.InvoiceRecord) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Base imponible:"),
			label("IVA:"),
			grandLabel("TOTAL:"),
		),
		col.New(3).Add(
			value(inv.Subtotal.StringFixed(2)+" €"),
			value(inv.VATTotal.StringFixed(2)+" €"),
			grandValue(inv.Total.StringFixed(2)+" €"),
		),
		col.New(3),
	)
}

// footerRows: estado de pago + leyenda de conservación.
func footerRows(inv entity.InvoiceRecord) []core.Row {
	estado := "Pendiente de pago"
	switch inv.Status {
	case entity.InvoiceStatusPaid:
		if inv.PaidAt != nil {
			estado = "Pagada el " + inv.PaidAt.Format("02/01/2006")
		} else {
			estado = "Pagada"
		}
	case entity.InvoiceStatusRefunded:
		estado = "Devuelta (nota de crédito emitida)"
	case entity.InvoiceStatusCancelled:
		estado = "ANULADA"
	}

	return []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New("Estado: "+estado, props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
			}),
		)),
		row.New(8).Add(col.New(12).Add(
			text.New(
				"Documento procesado por ordenador. Conserve esta factura como soporte fiscal.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
