package billing

import (
	"context"
	"time"

	"github.com/pataspro/petshop-api/internal/domain/entity"
)

// NumberGenerator produce el siguiente número fiscal para el ámbito
// (empresa, tienda, año), con formato AAAA/NNNN. Contrato exigido a la
// implementación: el leer-incrementar-escribir del contador por ámbito debe
// ser una única transacción atómica con aislamiento serializable, de modo
// que dos llamadas concurrentes del mismo ámbito jamás observen el mismo
// número. Los números son monótonos pero no necesariamente sin huecos: una
// emisión abortada puede descartar un número ya incrementado.
type NumberGenerator interface {
	Next(ctx context.Context, companyID, storeID string, year int) (string, error)
}

// RoleResolver resuelve los roles efectivos de un usuario para decisiones de
// autorización en los casos de uso.
type RoleResolver interface {
	ResolveRoles(ctx context.Context, userID string) (entity.RoleSet, error)
}

// AuditEntry es una anotación de auditoría sobre un documento fiscal.
type AuditEntry struct {
	EntityType  string
	EntityID    string
	Action      string
	PerformedBy string
	Before      map[string]string
	After       map[string]string
	At          time.Time
}

// AuditSink registra entradas de auditoría. Fire-and-forget: un fallo aquí
// se loguea y nunca hace fallar el caso de uso.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// ExportData agrupa los documentos de un período para un export financiero.
type ExportData struct {
	Company      *entity.Company
	PeriodStart  *time.Time
	PeriodEnd    *time.Time
	Invoices     []entity.InvoiceRecord
	Transactions []entity.TransactionRecord
	CreditNotes  []entity.CreditNoteRecord
}

// ExportWriter serializa los datos de un export a un formato concreto.
type ExportWriter interface {
	Format() entity.ExportFormat
	// Write devuelve el contenido serializado y la extensión de fichero sugerida.
	Write(data ExportData) ([]byte, string, error)
}

// ExportStorage almacena el contenido generado y devuelve su ubicación
// (ruta local o referencia sftp://, según el adaptador).
type ExportStorage interface {
	Store(content []byte, name string) (string, error)
}

// InvoicePDFData agrupa lo necesario para la representación imprimible.
type InvoicePDFData struct {
	Invoice entity.InvoiceRecord
	Company *entity.Company
	Buyer   *entity.Customer // nil = consumidor final
}

// InvoicePDFGenerator genera la representación gráfica de una factura emitida.
type InvoicePDFGenerator interface {
	Generate(data InvoicePDFData) ([]byte, error)
}
