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

func newTransactionFixture() (*lifecycleFixture, *TransactionUseCase) {
	f := newLifecycleFixture()
	uc := NewTransactionUseCase(f.transactions, f.invoices, f.stores, f.roles, f.audit)
	return f, uc
}

func TestTransactionCreate(t *testing.T) {
	f, uc := newTransactionFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusIssued)

	resp, err := uc.Create(context.Background(), "company-1", dto.CreateTransactionRequest{
		StoreID:   "store-1",
		InvoiceID: invoiceID,
		Lines: []dto.TransactionLineInput{
			{ProductID: "product-1", Quantity: 2, UnitPrice: decimal.NewFromFloat(12.49)},
			{ServiceContext: "grooming", Quantity: 1, UnitPrice: decimal.NewFromFloat(10.00)},
		},
	}, "user-clerk")
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPending), resp.PaymentStatus)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromFloat(34.98)),
		"total derivado esperado 34.98, fue %s", resp.TotalAmount)
}

func TestTransactionCreateValidation(t *testing.T) {
	f, uc := newTransactionFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusIssued)

	_, err := uc.Create(context.Background(), "company-1", dto.CreateTransactionRequest{
		InvoiceID: invoiceID,
	}, "user-clerk")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), "tienda requerida")

	_, err = uc.Create(context.Background(), "company-1", dto.CreateTransactionRequest{
		StoreID: "store-1", InvoiceID: "no-existe",
		Lines: []dto.TransactionLineInput{{ProductID: "product-1", Quantity: 1}},
	}, "user-clerk")
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	_, err = uc.Create(context.Background(), "company-1", dto.CreateTransactionRequest{
		StoreID: "store-otra", InvoiceID: invoiceID,
		Lines: []dto.TransactionLineInput{{ProductID: "product-1", Quantity: 1}},
	}, "user-clerk")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), "la tienda debe coincidir con la de la factura")

	// Línea con producto y servicio a la vez viola el exactamente-uno.
	_, err = uc.Create(context.Background(), "company-1", dto.CreateTransactionRequest{
		StoreID: "store-1", InvoiceID: invoiceID,
		Lines: []dto.TransactionLineInput{
			{ProductID: "product-1", ServiceContext: "grooming", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		},
	}, "user-clerk")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	// Línea sin producto ni servicio también.
	_, err = uc.Create(context.Background(), "company-1", dto.CreateTransactionRequest{
		StoreID: "store-1", InvoiceID: invoiceID,
		Lines: []dto.TransactionLineInput{{Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	}, "user-clerk")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestTransactionSettlementFlow(t *testing.T) {
	f, uc := newTransactionFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusIssued)

	created, err := uc.Create(context.Background(), "company-1", dto.CreateTransactionRequest{
		StoreID: "store-1", InvoiceID: invoiceID,
		Lines: []dto.TransactionLineInput{{ProductID: "product-1", Quantity: 1, UnitPrice: decimal.NewFromInt(50)}},
	}, "user-clerk")
	require.NoError(t, err)

	// La devolución directa desde PENDING es ilegal.
	_, err = uc.Refund(context.Background(), "company-1", created.ID, "user-clerk")
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err), "PENDING no admite devolución")

	paid, err := uc.MarkPaidManual(context.Background(), "company-1", created.ID, "user-clerk")
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPaidManual), paid.PaymentStatus)

	// PAID_MANUAL nunca vuelve a PENDING ni se re-cobra.
	_, err = uc.MarkPaidManual(context.Background(), "company-1", created.ID, "user-clerk")
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	refunded, err := uc.Refund(context.Background(), "company-1", created.ID, "user-clerk")
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusRefunded), refunded.PaymentStatus)

	_, err = uc.Refund(context.Background(), "company-1", created.ID, "user-clerk")
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err), "REFUNDED es terminal")
}

func TestTransactionCompanyScope(t *testing.T) {
	f, uc := newTransactionFixture()
	invoiceID := f.seedInvoice(t, entity.InvoiceStatusIssued)

	created, err := uc.Create(context.Background(), "company-1", dto.CreateTransactionRequest{
		StoreID: "store-1", InvoiceID: invoiceID,
		Lines: []dto.TransactionLineInput{{ProductID: "product-1", Quantity: 1, UnitPrice: decimal.NewFromInt(50)}},
	}, "user-clerk")
	require.NoError(t, err)

	_, err = uc.Get(context.Background(), "company-2", created.ID)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err), "otra empresa no ve la transacción")

	list, err := uc.ListByInvoice(context.Background(), "company-1", invoiceID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
