package billing_test

import (
	"strings"
	"testing"

	"github.com/pataspro/petshop-api/internal/domain/billing"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NIF válido: 123456789 (control 9, ver pkg/fiscal).
func validCompany() *entity.Company {
	return &entity.Company{ID: "co-1", Name: "PatasPro Lisboa", NIF: "123456789", Status: "active"}
}

func issuableInvoice(t *testing.T) *entity.Invoice {
	t.Helper()
	inv, err := entity.NewInvoice("inv-1", "co-1", "st-1", calcNow)
	require.NoError(t, err)
	require.NoError(t, inv.AddLine(entity.InvoiceLine{
		Description: "pienso", Quantity: 2, UnitPrice: dec("50.00"), VATRate: dec("23"),
	}))
	require.NoError(t, inv.SetNumber("2026/0001"))
	return inv
}

func TestValidateIssuance_FacturaEmitible(t *testing.T) {
	svc := billing.NewIssuanceService()
	check := svc.ValidateIssuance(issuableInvoice(t), validCompany())
	assert.True(t, check.CanIssue, "errores: %v", check.Errors)
	assert.Empty(t, check.Errors)
	// Sin comprador identificado: advertencia, no error.
	assert.NotEmpty(t, check.Warnings)
}

func TestValidateIssuance_NIFInvalido(t *testing.T) {
	svc := billing.NewIssuanceService()
	company := validCompany()
	company.NIF = "123456780"
	check := svc.ValidateIssuance(issuableInvoice(t), company)
	assert.False(t, check.CanIssue)
	require.NotEmpty(t, check.Errors)
	assert.Contains(t, check.Errors[0], "NIF")
}

func TestValidateIssuance_EmpresaEquivocada(t *testing.T) {
	svc := billing.NewIssuanceService()
	company := validCompany()
	company.ID = "co-otra"
	check := svc.ValidateIssuance(issuableInvoice(t), company)
	assert.False(t, check.CanIssue)
}

func TestValidateIssuance_EstadoNoDraft(t *testing.T) {
	svc := billing.NewIssuanceService()
	inv := issuableInvoice(t)
	require.NoError(t, inv.Issue(calcNow))
	check := svc.ValidateIssuance(inv, validCompany())
	assert.False(t, check.CanIssue, "solo se emite desde DRAFT")
}

func TestValidateIssuance_SinLineasNiNumeroAcumulaErrores(t *testing.T) {
	svc := billing.NewIssuanceService()
	inv, err := entity.NewInvoice("inv-1", "co-1", "st-1", calcNow)
	require.NoError(t, err)
	check := svc.ValidateIssuance(inv, validCompany())
	assert.False(t, check.CanIssue)
	assert.GreaterOrEqual(t, len(check.Errors), 2, "sin líneas y sin número deben reportarse juntos")
}

func TestValidateIssuance_TipoIVANoVigenteAdvierte(t *testing.T) {
	svc := billing.NewIssuanceService()
	inv, err := entity.NewInvoice("inv-1", "co-1", "st-1", calcNow)
	require.NoError(t, err)
	require.NoError(t, inv.AddLine(entity.InvoiceLine{
		Description: "pienso", Quantity: 1, UnitPrice: dec("10.00"), VATRate: dec("17"),
	}))
	require.NoError(t, inv.SetNumber("2026/0001"))

	check := svc.ValidateIssuance(inv, validCompany())
	assert.True(t, check.CanIssue, "un tipo no vigente advierte pero no bloquea")
	assert.Contains(t, strings.Join(check.Warnings, "; "), "IVA",
		"la advertencia debe señalar el tipo de IVA")
}

func TestValidateIssuance_NulosNoExplotan(t *testing.T) {
	svc := billing.NewIssuanceService()
	assert.False(t, svc.ValidateIssuance(nil, validCompany()).CanIssue)
	assert.False(t, svc.ValidateIssuance(issuableInvoice(t), nil).CanIssue)
}

func TestPredicadosDeTransicion(t *testing.T) {
	svc := billing.NewIssuanceService()

	draft := issuableInvoice(t)
	assert.False(t, svc.CanMarkAsPaid(draft))
	assert.True(t, svc.CanCancel(draft))
	assert.False(t, svc.CanRefund(draft))
	assert.False(t, svc.IsImmutable(draft))
	assert.False(t, svc.IsTerminal(draft))

	issued := issuableInvoice(t)
	require.NoError(t, issued.Issue(calcNow))
	assert.True(t, svc.CanMarkAsPaid(issued))
	assert.True(t, svc.CanCancel(issued))
	assert.False(t, svc.CanRefund(issued))
	assert.True(t, svc.IsImmutable(issued))

	paid := issuableInvoice(t)
	require.NoError(t, paid.Issue(calcNow))
	require.NoError(t, paid.MarkPaid(calcNow))
	assert.False(t, svc.CanMarkAsPaid(paid))
	assert.False(t, svc.CanCancel(paid), "PAID no se anula, se devuelve")
	assert.True(t, svc.CanRefund(paid))
	assert.False(t, svc.IsTerminal(paid))

	refunded := issuableInvoice(t)
	require.NoError(t, refunded.Issue(calcNow))
	require.NoError(t, refunded.MarkPaid(calcNow))
	require.NoError(t, refunded.Refund(calcNow))
	assert.True(t, svc.IsTerminal(refunded))
	assert.False(t, svc.CanRefund(refunded))
}

func TestVATRateYPeriod(t *testing.T) {
	_, err := billing.NewVATRate(dec("23"))
	assert.NoError(t, err)
	_, err = billing.NewVATRate(dec("-1"))
	assert.Error(t, err)
	_, err = billing.NewVATRate(dec("100.5"))
	assert.Error(t, err)

	rate, _ := billing.NewVATRate(dec("23"))
	assert.True(t, rate.Fraction().Equal(dec("0.23")))

	assert.True(t, billing.IsCurrentVATRate(dec("13")))
	assert.False(t, billing.IsCurrentVATRate(dec("17")), "el 17 por ciento solo rige en las regiones autónomas")

	start := calcNow
	end := calcNow.Add(-1)
	_, err = billing.NewPeriod(&start, &end)
	assert.Error(t, err, "fin anterior al inicio debe fallar")

	p, err := billing.NewPeriod(&start, nil)
	require.NoError(t, err)
	assert.True(t, p.Contains(start), "extremos inclusivos")
	assert.False(t, p.Contains(start.Add(-1)))
}
