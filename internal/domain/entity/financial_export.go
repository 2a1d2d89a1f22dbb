package entity

import (
	"fmt"
	"time"

	"github.com/pataspro/petshop-api/internal/domain"
)

// ExportFormat es el formato de un export financiero.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "CSV"
	ExportFormatJSON ExportFormat = "JSON"
	ExportFormatXML  ExportFormat = "XML" // fichero de auditoría estilo SAF-T
)

// FinancialExport agrupa facturas, transacciones y notas de crédito de un
// período para reporte contable. Una vez generado (ubicación fijada) el
// export es inmutable: ni formato, ni período, ni ubicación cambian.
type FinancialExport struct {
	id            string
	companyID     string
	periodStart   *time.Time
	periodEnd     *time.Time
	format        ExportFormat
	filePath      string
	sftpReference string
	createdBy     string
	createdAt     time.Time
}

// NewFinancialExport crea un export pendiente de generar. Si ambos extremos
// del período están presentes, periodEnd debe ser >= periodStart.
func NewFinancialExport(id, companyID, createdBy string, periodStart, periodEnd *time.Time, format ExportFormat, now time.Time) (*FinancialExport, error) {
	if id == "" || companyID == "" {
		return nil, fmt.Errorf("%w: export requiere id y empresa", domain.ErrInvalidInput)
	}
	switch format {
	case ExportFormatCSV, ExportFormatJSON, ExportFormatXML:
	default:
		return nil, fmt.Errorf("%w: formato de export desconocido %q", domain.ErrInvalidInput, format)
	}
	if periodStart != nil && periodEnd != nil && periodEnd.Before(*periodStart) {
		return nil, fmt.Errorf("%w: el fin del período no puede ser anterior al inicio", domain.ErrInvalidInput)
	}
	return &FinancialExport{
		id:          id,
		companyID:   companyID,
		periodStart: copyTime(periodStart),
		periodEnd:   copyTime(periodEnd),
		format:      format,
		createdBy:   createdBy,
		createdAt:   now,
	}, nil
}

func (e *FinancialExport) ID() string            { return e.id }
func (e *FinancialExport) CompanyID() string     { return e.companyID }
func (e *FinancialExport) Format() ExportFormat  { return e.format }
func (e *FinancialExport) FilePath() string      { return e.filePath }
func (e *FinancialExport) SFTPReference() string { return e.sftpReference }
func (e *FinancialExport) CreatedBy() string     { return e.createdBy }
func (e *FinancialExport) CreatedAt() time.Time  { return e.createdAt }

func (e *FinancialExport) PeriodStart() *time.Time { return copyTime(e.periodStart) }
func (e *FinancialExport) PeriodEnd() *time.Time   { return copyTime(e.periodEnd) }

// IsGenerated indica si el export ya tiene ubicación (inmutable desde entonces).
func (e *FinancialExport) IsGenerated() bool {
	return e.filePath != "" || e.sftpReference != ""
}

// MarkGeneratedFile fija la ubicación local del fichero generado.
// Exactamente una ubicación por export: fichero local o referencia SFTP.
func (e *FinancialExport) MarkGeneratedFile(path string) error {
	if e.IsGenerated() {
		return fmt.Errorf("%w: el export ya fue generado", domain.ErrImmutable)
	}
	if path == "" {
		return fmt.Errorf("%w: ruta de fichero vacía", domain.ErrInvalidInput)
	}
	e.filePath = path
	return nil
}

// MarkGeneratedSFTP fija la referencia SFTP del fichero entregado.
func (e *FinancialExport) MarkGeneratedSFTP(ref string) error {
	if e.IsGenerated() {
		return fmt.Errorf("%w: el export ya fue generado", domain.ErrImmutable)
	}
	if ref == "" {
		return fmt.Errorf("%w: referencia SFTP vacía", domain.ErrInvalidInput)
	}
	e.sftpReference = ref
	return nil
}

// FinancialExportRecord es la forma plana persistible.
type FinancialExportRecord struct {
	ID            string
	CompanyID     string
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	Format        ExportFormat
	FilePath      string
	SFTPReference string
	CreatedBy     string
	CreatedAt     time.Time
}

// Record devuelve la forma persistible.
func (e *FinancialExport) Record() FinancialExportRecord {
	return FinancialExportRecord{
		ID:            e.id,
		CompanyID:     e.companyID,
		PeriodStart:   e.PeriodStart(),
		PeriodEnd:     e.PeriodEnd(),
		Format:        e.format,
		FilePath:      e.filePath,
		SFTPReference: e.sftpReference,
		CreatedBy:     e.createdBy,
		CreatedAt:     e.createdAt,
	}
}

// RehydrateFinancialExport reconstruye desde un registro persistido.
func RehydrateFinancialExport(rec FinancialExportRecord) (*FinancialExport, error) {
	if rec.FilePath != "" && rec.SFTPReference != "" {
		return nil, fmt.Errorf("%w: export %s con dos ubicaciones (dato corrupto)", domain.ErrInvalidInput, rec.ID)
	}
	exp, err := NewFinancialExport(rec.ID, rec.CompanyID, rec.CreatedBy, rec.PeriodStart, rec.PeriodEnd, rec.Format, rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	exp.filePath = rec.FilePath
	exp.sftpReference = rec.SFTPReference
	return exp, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
