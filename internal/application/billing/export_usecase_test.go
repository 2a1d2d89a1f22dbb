package billing

import (
	"context"
	"testing"
	"time"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExportWriter struct {
	format   entity.ExportFormat
	ext      string
	lastData ExportData
	written  int
}

func (w *fakeExportWriter) Format() entity.ExportFormat { return w.format }

func (w *fakeExportWriter) Write(data ExportData) ([]byte, string, error) {
	w.lastData = data
	w.written++
	return []byte("contenido"), w.ext, nil
}

type fakeExportStorage struct {
	prefix string
	names  []string
}

func (s *fakeExportStorage) Store(content []byte, name string) (string, error) {
	s.names = append(s.names, name)
	return s.prefix + name, nil
}

func newExportFixture(prefix string) (*lifecycleFixture, *fakeExportWriter, *fakeExportStorage, *ExportUseCase) {
	f := newLifecycleFixture()
	writer := &fakeExportWriter{format: entity.ExportFormatCSV, ext: ".csv"}
	storage := &fakeExportStorage{prefix: prefix}
	exports := newFakeExportRepo()
	notes := newFakeCreditNoteRepo()
	uc := NewExportUseCase(exports, f.invoices, f.transactions, notes, f.companies,
		[]ExportWriter{writer}, storage, f.roles, f.audit)
	return f, writer, storage, uc
}

func TestExportCreate(t *testing.T) {
	f, writer, storage, uc := newExportFixture("/var/exports/")
	f.seedInvoice(t, entity.InvoiceStatusIssued)

	resp, err := uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "csv"}, "user-accountant")
	require.NoError(t, err, "el export CSV debe generarse")

	assert.Equal(t, "CSV", resp.Format)
	assert.NotEmpty(t, resp.FilePath, "la ubicación local queda fijada")
	assert.Empty(t, resp.SFTPReference, "exactamente una ubicación")
	assert.Equal(t, 1, writer.written)
	require.Len(t, writer.lastData.Invoices, 1, "la factura emitida entra en el export")
	require.Len(t, storage.names, 1)
	assert.Contains(t, storage.names[0], "123456789", "el nombre de fichero lleva el NIF de la empresa")
	assert.Contains(t, f.audit.actions(), "generate")
}

func TestExportSFTPLocation(t *testing.T) {
	f, _, _, uc := newExportFixture("sftp://contabilidad.example/incoming/")
	f.seedInvoice(t, entity.InvoiceStatusIssued)

	resp, err := uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "CSV"}, "user-accountant")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SFTPReference, "una ubicación sftp:// se registra como referencia SFTP")
	assert.Empty(t, resp.FilePath)
}

func TestExportSkipsDrafts(t *testing.T) {
	f, writer, _, uc := newExportFixture("/var/exports/")
	f.seedInvoice(t, entity.InvoiceStatusDraft)

	_, err := uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "csv"}, "user-accountant")
	require.NoError(t, err)
	assert.Empty(t, writer.lastData.Invoices, "los borradores no son documentos fiscales")
}

func TestExportPeriodFilter(t *testing.T) {
	f, writer, _, uc := newExportFixture("/var/exports/")
	f.seedInvoice(t, entity.InvoiceStatusIssued) // emitida hace una hora

	from := time.Now().Add(-2 * time.Hour)
	to := time.Now()
	_, err := uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "csv", PeriodStart: &from, PeriodEnd: &to}, "user-accountant")
	require.NoError(t, err)
	assert.Len(t, writer.lastData.Invoices, 1, "la factura cae dentro del período")
	require.NotNil(t, writer.lastData.PeriodStart)
	assert.WithinDuration(t, from, *writer.lastData.PeriodStart, time.Second, "el período pedido llega al writer")

	oldFrom := time.Now().Add(-48 * time.Hour)
	oldTo := time.Now().Add(-24 * time.Hour)
	_, err = uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "csv", PeriodStart: &oldFrom, PeriodEnd: &oldTo}, "user-accountant")
	require.NoError(t, err)
	assert.Empty(t, writer.lastData.Invoices, "fuera del período no entra nada")
}

func TestExportValidation(t *testing.T) {
	f, _, _, uc := newExportFixture("/var/exports/")
	f.seedInvoice(t, entity.InvoiceStatusIssued)

	_, err := uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "parquet"}, "user-accountant")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), "formato no soportado")

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err = uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "csv", PeriodStart: &start, PeriodEnd: &end}, "user-accountant")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err), "período invertido")

	_, err = uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "csv"}, "user-clerk")
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err), "un clerk no genera exports")

	_, err = uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "csv"}, "user-manager")
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err), "export restringido a perfiles contables")
}

func TestExportGetAndList(t *testing.T) {
	f, _, _, uc := newExportFixture("/var/exports/")
	f.seedInvoice(t, entity.InvoiceStatusIssued)

	created, err := uc.Create(context.Background(), "company-1",
		dto.CreateExportRequest{Format: "csv"}, "user-accountant")
	require.NoError(t, err)

	got, err := uc.Get(context.Background(), "company-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = uc.Get(context.Background(), "company-2", created.ID)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	list, err := uc.List(context.Background(), "company-1", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
