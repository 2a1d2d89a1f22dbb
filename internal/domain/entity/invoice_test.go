package entity_test

import (
	"testing"
	"time"

	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

func newDraftInvoice(t *testing.T) *entity.Invoice {
	t.Helper()
	inv, err := entity.NewInvoice("inv-1", "co-1", "st-1", testNow)
	require.NoError(t, err)
	return inv
}

func lineQty2Price50VAT23() entity.InvoiceLine {
	return entity.InvoiceLine{
		Description: "Saco de pienso 15kg",
		ProductID:   "prod-1",
		Quantity:    2,
		UnitPrice:   decimal.NewFromFloat(50.00),
		VATRate:     decimal.NewFromInt(23),
	}
}

// invoiceInStatus lleva una factura válida hasta el estado pedido
// recorriendo solo transiciones legales.
func invoiceInStatus(t *testing.T, status entity.InvoiceStatus) *entity.Invoice {
	t.Helper()
	inv := newDraftInvoice(t)
	require.NoError(t, inv.AddLine(lineQty2Price50VAT23()))
	require.NoError(t, inv.SetNumber("2026/0001"))
	switch status {
	case entity.InvoiceStatusDraft:
	case entity.InvoiceStatusIssued:
		require.NoError(t, inv.Issue(testNow))
	case entity.InvoiceStatusPaid:
		require.NoError(t, inv.Issue(testNow))
		require.NoError(t, inv.MarkPaid(testNow))
	case entity.InvoiceStatusRefunded:
		require.NoError(t, inv.Issue(testNow))
		require.NoError(t, inv.MarkPaid(testNow))
		require.NoError(t, inv.Refund(testNow))
	case entity.InvoiceStatusCancelled:
		require.NoError(t, inv.Cancel(testNow))
	}
	require.Equal(t, status, inv.Status())
	return inv
}

func TestNewInvoice_RequiereIdEmpresaYTienda(t *testing.T) {
	for _, c := range []struct{ id, company, store string }{
		{"", "co", "st"}, {"id", "", "st"}, {"id", "co", ""},
	} {
		_, err := entity.NewInvoice(c.id, c.company, c.store, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestInvoice_CalculoTotalesLineaUnica(t *testing.T) {
	inv := newDraftInvoice(t)
	require.NoError(t, inv.AddLine(lineQty2Price50VAT23()))

	// 2 × 50.00 = 100.00; IVA 23% = 23.00; total 123.00
	assert.True(t, inv.Subtotal().Equal(decimal.NewFromFloat(100.00)), "subtotal: %s", inv.Subtotal())
	assert.True(t, inv.VATTotal().Equal(decimal.NewFromFloat(23.00)), "IVA: %s", inv.VATTotal())
	assert.True(t, inv.Total().Equal(decimal.NewFromFloat(123.00)), "total: %s", inv.Total())
}

func TestInvoice_TotalSiempreEsSubtotalMasIVA(t *testing.T) {
	inv := newDraftInvoice(t)
	lines := []entity.InvoiceLine{
		{Description: "pienso", ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromFloat(19.99), VATRate: decimal.NewFromInt(23)},
		{Description: "consulta", ServiceContext: "veterinaria", Quantity: 1, UnitPrice: decimal.NewFromFloat(35.50), VATRate: decimal.NewFromInt(6)},
		{Description: "juguete", Quantity: 7, UnitPrice: decimal.NewFromFloat(0.33), VATRate: decimal.NewFromInt(13)},
	}
	for _, l := range lines {
		require.NoError(t, inv.AddLine(l))
	}
	assert.True(t, inv.Total().Equal(inv.Subtotal().Add(inv.VATTotal())),
		"total (%s) debe ser subtotal (%s) + IVA (%s)", inv.Total(), inv.Subtotal(), inv.VATTotal())
	assert.False(t, inv.Subtotal().IsNegative())
	assert.False(t, inv.VATTotal().IsNegative())
	assert.False(t, inv.Total().IsNegative())
}

func TestInvoiceLine_ValidacionInvariantes(t *testing.T) {
	base := lineQty2Price50VAT23()

	l := base
	l.ServiceContext = "también servicio"
	assert.Error(t, l.Validate(), "producto y servicio a la vez debe fallar")

	l = base
	l.Quantity = 0
	assert.Error(t, l.Validate(), "cantidad cero debe fallar")

	l = base
	l.Quantity = -1
	assert.Error(t, l.Validate(), "cantidad negativa debe fallar")

	l = base
	l.UnitPrice = decimal.NewFromFloat(-0.01)
	assert.Error(t, l.Validate(), "precio negativo debe fallar")

	l = base
	l.VATRate = decimal.NewFromInt(101)
	assert.Error(t, l.Validate(), "IVA > 100 debe fallar")

	l = base
	l.VATRate = decimal.NewFromInt(-1)
	assert.Error(t, l.Validate(), "IVA negativo debe fallar")
}

// TestInvoice_MaquinaEstadosExhaustiva prueba, para cada uno de los 5
// estados, los 4 destinos restantes: solo las aristas de la tabla legal
// deben tener éxito.
func TestInvoice_MaquinaEstadosExhaustiva(t *testing.T) {
	legal := map[entity.InvoiceStatus]map[entity.InvoiceStatus]bool{
		entity.InvoiceStatusDraft:     {entity.InvoiceStatusIssued: true, entity.InvoiceStatusCancelled: true},
		entity.InvoiceStatusIssued:    {entity.InvoiceStatusPaid: true, entity.InvoiceStatusCancelled: true},
		entity.InvoiceStatusPaid:      {entity.InvoiceStatusRefunded: true},
		entity.InvoiceStatusCancelled: {},
		entity.InvoiceStatusRefunded:  {},
	}
	attempt := func(inv *entity.Invoice, to entity.InvoiceStatus) error {
		switch to {
		case entity.InvoiceStatusIssued:
			return inv.Issue(testNow)
		case entity.InvoiceStatusPaid:
			return inv.MarkPaid(testNow)
		case entity.InvoiceStatusRefunded:
			return inv.Refund(testNow)
		case entity.InvoiceStatusCancelled:
			return inv.Cancel(testNow)
		}
		t.Fatalf("destino no contemplado: %s", to)
		return nil
	}
	for _, from := range entity.InvoiceStatuses {
		for _, to := range entity.InvoiceStatuses {
			if from == to {
				continue
			}
			inv := invoiceInStatus(t, from)
			err := attempt(inv, to)
			if legal[from][to] {
				assert.NoError(t, err, "transición %s→%s debe ser legal", from, to)
				assert.Equal(t, to, inv.Status())
			} else {
				assert.Error(t, err, "transición %s→%s debe rechazarse", from, to)
				assert.Equal(t, from, inv.Status(), "un rechazo no debe cambiar el estado")
			}
		}
	}
}

// TestInvoice_InmutabilidadFueraDeDraft verifica que toda mutación
// estructural falla en cada estado distinto de DRAFT.
func TestInvoice_InmutabilidadFueraDeDraft(t *testing.T) {
	nonDraft := []entity.InvoiceStatus{
		entity.InvoiceStatusIssued, entity.InvoiceStatusPaid,
		entity.InvoiceStatusCancelled, entity.InvoiceStatusRefunded,
	}
	for _, status := range nonDraft {
		inv := invoiceInStatus(t, status)
		assert.ErrorIs(t, inv.AddLine(lineQty2Price50VAT23()), domain.ErrImmutable, "AddLine en %s", status)
		assert.ErrorIs(t, inv.UpdateLine(0, lineQty2Price50VAT23()), domain.ErrImmutable, "UpdateLine en %s", status)
		assert.ErrorIs(t, inv.RemoveLine(0), domain.ErrImmutable, "RemoveLine en %s", status)
		assert.ErrorIs(t, inv.SetNumber("2026/0099"), domain.ErrImmutable, "SetNumber en %s", status)
		assert.ErrorIs(t, inv.SetBuyer("cust-9"), domain.ErrImmutable, "SetBuyer en %s", status)
		assert.True(t, inv.IsImmutable())
	}
}

func TestInvoice_EmitirSinLineasOSinNumeroFalla(t *testing.T) {
	sinLineas := newDraftInvoice(t)
	require.NoError(t, sinLineas.SetNumber("2026/0001"))
	assert.ErrorIs(t, sinLineas.Issue(testNow), domain.ErrInvalidInput, "emitir sin líneas debe fallar")

	sinNumero := newDraftInvoice(t)
	require.NoError(t, sinNumero.AddLine(lineQty2Price50VAT23()))
	assert.ErrorIs(t, sinNumero.Issue(testNow), domain.ErrInvalidInput, "emitir sin número debe fallar")
}

func TestInvoice_IssueFijaIssuedAtUnaVez(t *testing.T) {
	inv := invoiceInStatus(t, entity.InvoiceStatusIssued)
	require.NotNil(t, inv.IssuedAt())
	assert.True(t, inv.IssuedAt().Equal(testNow))
	assert.Error(t, inv.Issue(testNow.Add(time.Hour)), "una segunda emisión debe rechazarse")
	assert.True(t, inv.IssuedAt().Equal(testNow), "issuedAt no debe cambiar")
}

func TestInvoice_CancelarPagadaSugiereDevolucion(t *testing.T) {
	inv := invoiceInStatus(t, entity.InvoiceStatusPaid)
	err := inv.Cancel(testNow)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "devolución", "el error debe indicar el flujo de devolución")
}

func TestInvoice_RecordRoundTrip(t *testing.T) {
	inv := invoiceInStatus(t, entity.InvoiceStatusPaid)
	rec := inv.Record()
	rebuilt, err := entity.RehydrateInvoice(rec)
	require.NoError(t, err)
	rec2 := rebuilt.Record()
	// updatedAt puede derivar si hubo mutación posterior; el resto debe ser idéntico.
	rec.UpdatedAt, rec2.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, rec, rec2, "rehidratar y volver a serializar debe dar un registro idéntico")
}

func TestRehydrateInvoice_EmitidaSinFechaEsCorrupta(t *testing.T) {
	rec := invoiceInStatus(t, entity.InvoiceStatusIssued).Record()
	rec.IssuedAt = nil
	_, err := entity.RehydrateInvoice(rec)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "corrupto")
}

func TestRehydrateInvoice_EstadoDesconocido(t *testing.T) {
	rec := invoiceInStatus(t, entity.InvoiceStatusDraft).Record()
	rec.Status = "EMITIDA"
	_, err := entity.RehydrateInvoice(rec)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInvoice_LinesDevuelveCopiaDefensiva(t *testing.T) {
	inv := newDraftInvoice(t)
	require.NoError(t, inv.AddLine(lineQty2Price50VAT23()))
	lines := inv.Lines()
	lines[0].Quantity = 999
	assert.Equal(t, int64(2), inv.Lines()[0].Quantity, "mutar la copia no debe afectar al agregado")
}

func TestInvoice_RemoveLineRecalcula(t *testing.T) {
	inv := newDraftInvoice(t)
	require.NoError(t, inv.AddLine(lineQty2Price50VAT23()))
	require.NoError(t, inv.AddLine(entity.InvoiceLine{
		Description: "champú", Quantity: 1, UnitPrice: decimal.NewFromFloat(10.00), VATRate: decimal.NewFromInt(23),
	}))
	require.NoError(t, inv.RemoveLine(1))
	assert.True(t, inv.Total().Equal(decimal.NewFromFloat(123.00)))
	require.NoError(t, inv.RemoveLine(0))
	assert.True(t, inv.Total().IsZero(), "sin líneas los totales vuelven a cero")
}
