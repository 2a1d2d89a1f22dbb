package billing

import (
	"context"
	"testing"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreditNoteFixture() (*lifecycleFixture, *fakeCreditNoteRepo, *CreditNoteUseCase) {
	f := newLifecycleFixture()
	notes := newFakeCreditNoteRepo()
	uc := NewCreditNoteUseCase(notes, f.invoices, f.roles, f.audit)
	return f, notes, uc
}

func TestCreditNoteCreate(t *testing.T) {
	f, _, uc := newCreditNoteFixture()
	id := f.seedInvoice(t, entity.InvoiceStatusIssued)

	resp, err := uc.Create(context.Background(), "company-1", dto.CreateCreditNoteRequest{
		InvoiceID: id,
		Amount:    decimal.NewFromFloat(23.00),
		Reason:    "descuento no aplicado",
	}, "user-accountant")
	require.NoError(t, err)
	assert.Equal(t, id, resp.InvoiceID)
	assert.True(t, resp.Amount.Equal(decimal.NewFromFloat(23.00)))
	assert.Nil(t, resp.IssuedAt, "recién creada no está emitida")
	assert.Equal(t, "user-accountant", resp.CreatedBy)
}

func TestCreditNoteCreateValidation(t *testing.T) {
	f, _, uc := newCreditNoteFixture()
	issued := f.seedInvoice(t, entity.InvoiceStatusIssued)

	_, err := uc.Create(context.Background(), "company-1",
		dto.CreateCreditNoteRequest{Amount: decimal.NewFromInt(10)}, "user-accountant")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), "factura requerida")

	_, err = uc.Create(context.Background(), "company-1",
		dto.CreateCreditNoteRequest{InvoiceID: "no-existe", Amount: decimal.NewFromInt(10)}, "user-accountant")
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	// El importe no puede exceder el total de la factura (123.00).
	_, err = uc.Create(context.Background(), "company-1",
		dto.CreateCreditNoteRequest{InvoiceID: issued, Amount: decimal.NewFromFloat(123.01)}, "user-accountant")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), "importe mayor que el saldo corregible")

	_, err = uc.Create(context.Background(), "company-1",
		dto.CreateCreditNoteRequest{InvoiceID: issued, Amount: decimal.Zero}, "user-accountant")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), "importe cero")

	_, err = uc.Create(context.Background(), "company-1",
		dto.CreateCreditNoteRequest{InvoiceID: issued, Amount: decimal.NewFromInt(10)}, "user-clerk")
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err), "un clerk no crea notas de crédito")
}

func TestCreditNoteRejectsDraftInvoice(t *testing.T) {
	f, _, uc := newCreditNoteFixture()
	draft := f.seedInvoice(t, entity.InvoiceStatusDraft)

	_, err := uc.Create(context.Background(), "company-1",
		dto.CreateCreditNoteRequest{InvoiceID: draft, Amount: decimal.NewFromInt(10)}, "user-accountant")
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err), "un borrador no admite nota de crédito")
}

func TestCreditNoteIssueIsIrreversible(t *testing.T) {
	f, _, uc := newCreditNoteFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusIssued)

	created, err := uc.Create(context.Background(), "company-1", dto.CreateCreditNoteRequest{
		InvoiceID: invoiceID, Amount: decimal.NewFromFloat(23.00),
	}, "user-accountant")
	require.NoError(t, err)

	issued, err := uc.Issue(context.Background(), "company-1", created.ID, "user-accountant")
	require.NoError(t, err)
	require.NotNil(t, issued.IssuedAt, "la emisión fija issuedAt")

	_, err = uc.Issue(context.Background(), "company-1", created.ID, "user-accountant")
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err), "no se emite dos veces")
}

func TestCreditNoteFullRefundMarksInvoiceRefunded(t *testing.T) {
	f, _, uc := newCreditNoteFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusPaid)

	created, err := uc.Create(context.Background(), "company-1", dto.CreateCreditNoteRequest{
		InvoiceID: invoiceID, Amount: decimal.NewFromFloat(123.00), Reason: "devolución completa",
	}, "user-accountant")
	require.NoError(t, err)

	_, err = uc.Issue(context.Background(), "company-1", created.ID, "user-accountant")
	require.NoError(t, err)

	stored, err := f.invoices.GetByID(invoiceID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusRefunded, stored.Status,
		"una nota emitida por el total de una factura pagada completa la devolución")
	assert.Contains(t, f.audit.actions(), "refund")
}

func TestCreditNotePartialRefundKeepsInvoicePaid(t *testing.T) {
	f, _, uc := newCreditNoteFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusPaid)

	created, err := uc.Create(context.Background(), "company-1", dto.CreateCreditNoteRequest{
		InvoiceID: invoiceID, Amount: decimal.NewFromFloat(23.00),
	}, "user-accountant")
	require.NoError(t, err)
	_, err = uc.Issue(context.Background(), "company-1", created.ID, "user-accountant")
	require.NoError(t, err)

	stored, _ := f.invoices.GetByID(invoiceID)
	assert.Equal(t, entity.InvoiceStatusPaid, stored.Status, "una corrección parcial no devuelve la factura")
}

func TestCreditNoteOutstandingShrinksWithIssuedNotes(t *testing.T) {
	f, _, uc := newCreditNoteFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusIssued)

	first, err := uc.Create(context.Background(), "company-1", dto.CreateCreditNoteRequest{
		InvoiceID: invoiceID, Amount: decimal.NewFromFloat(100.00),
	}, "user-accountant")
	require.NoError(t, err)
	_, err = uc.Issue(context.Background(), "company-1", first.ID, "user-accountant")
	require.NoError(t, err)

	// Saldo restante 23.00: una segunda nota mayor debe rechazarse.
	_, err = uc.Create(context.Background(), "company-1", dto.CreateCreditNoteRequest{
		InvoiceID: invoiceID, Amount: decimal.NewFromFloat(23.01),
	}, "user-accountant")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = uc.Create(context.Background(), "company-1", dto.CreateCreditNoteRequest{
		InvoiceID: invoiceID, Amount: decimal.NewFromFloat(23.00),
	}, "user-accountant")
	assert.NoError(t, err, "el saldo exacto sí cabe")
}

func TestCreditNoteListByInvoice(t *testing.T) {
	f, _, uc := newCreditNoteFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusIssued)

	for _, amount := range []float64{10, 20} {
		_, err := uc.Create(context.Background(), "company-1", dto.CreateCreditNoteRequest{
			InvoiceID: invoiceID, Amount: decimal.NewFromFloat(amount),
		}, "user-accountant")
		require.NoError(t, err)
	}

	notes, err := uc.ListByInvoice(context.Background(), "company-1", invoiceID)
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	_, err = uc.ListByInvoice(context.Background(), "company-2", invoiceID)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err), "otra empresa no ve las notas")
}
