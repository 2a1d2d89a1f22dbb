package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pataspro/petshop-api/internal/domain/entity"
	"github.com/pataspro/petshop-api/pkg/fiscal"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los puertos. Los campos *Err permiten inyectar fallos
// de infraestructura en tests concretos.
// ─────────────────────────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	mu        sync.Mutex
	byID      map[string]entity.InvoiceRecord
	createErr error
	updateErr error
	getErr    error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{byID: make(map[string]entity.InvoiceRecord)}
}

func (r *fakeInvoiceRepo) Create(rec entity.InvoiceRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeInvoiceRepo) Update(rec entity.InvoiceRecord) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.InvoiceRecord, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeInvoiceRepo) GetByNumber(companyID, number string) (*entity.InvoiceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.byID {
		if rec.CompanyID == companyID && rec.Number == number {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) ListByCompany(companyID string, limit, offset int) ([]entity.InvoiceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.InvoiceRecord
	for _, rec := range r.byID {
		if rec.CompanyID == companyID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByPeriod(companyID string, from, to *time.Time) ([]entity.InvoiceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.InvoiceRecord
	for _, rec := range r.byID {
		if rec.CompanyID != companyID || rec.IssuedAt == nil {
			continue
		}
		if from != nil && rec.IssuedAt.Before(*from) {
			continue
		}
		if to != nil && rec.IssuedAt.After(*to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type fakeCreditNoteRepo struct {
	mu      sync.Mutex
	byID    map[string]entity.CreditNoteRecord
	listErr error
}

func newFakeCreditNoteRepo() *fakeCreditNoteRepo {
	return &fakeCreditNoteRepo{byID: make(map[string]entity.CreditNoteRecord)}
}

func (r *fakeCreditNoteRepo) Create(rec entity.CreditNoteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeCreditNoteRepo) Update(rec entity.CreditNoteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeCreditNoteRepo) GetByID(id string) (*entity.CreditNoteRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeCreditNoteRepo) ListByInvoice(invoiceID string) ([]entity.CreditNoteRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CreditNoteRecord
	for _, rec := range r.byID {
		if rec.InvoiceID == invoiceID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeTransactionRepo struct {
	mu      sync.Mutex
	byID    map[string]entity.TransactionRecord
	listErr error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{byID: make(map[string]entity.TransactionRecord)}
}

func (r *fakeTransactionRepo) Create(rec entity.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeTransactionRepo) Update(rec entity.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeTransactionRepo) GetByID(id string) (*entity.TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeTransactionRepo) ListByInvoice(invoiceID string) ([]entity.TransactionRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.TransactionRecord
	for _, rec := range r.byID {
		if rec.InvoiceID == invoiceID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeExportRepo struct {
	mu   sync.Mutex
	byID map[string]entity.FinancialExportRecord
}

func newFakeExportRepo() *fakeExportRepo {
	return &fakeExportRepo{byID: make(map[string]entity.FinancialExportRecord)}
}

func (r *fakeExportRepo) Create(rec entity.FinancialExportRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeExportRepo) Update(rec entity.FinancialExportRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeExportRepo) GetByID(id string) (*entity.FinancialExportRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeExportRepo) ListByCompany(companyID string, limit, offset int) ([]entity.FinancialExportRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.FinancialExportRecord
	for _, rec := range r.byID {
		if rec.CompanyID == companyID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeCompanyRepo struct {
	byID map[string]*entity.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{byID: make(map[string]*entity.Company)}
}

func (r *fakeCompanyRepo) Create(c *entity.Company) error          { r.byID[c.ID] = c; return nil }
func (r *fakeCompanyRepo) Update(c *entity.Company) error          { r.byID[c.ID] = c; return nil }
func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.byID[id], nil
}
func (r *fakeCompanyRepo) GetByNIF(nif string) (*entity.Company, error) {
	for _, c := range r.byID {
		if c.NIF == nif {
			return c, nil
		}
	}
	return nil, nil
}
func (r *fakeCompanyRepo) List(limit, offset int) ([]*entity.Company, error) { return nil, nil }

type fakeStoreRepo struct {
	byID map[string]*entity.Store
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{byID: make(map[string]*entity.Store)}
}

func (r *fakeStoreRepo) Create(s *entity.Store) error { r.byID[s.ID] = s; return nil }
func (r *fakeStoreRepo) Update(s *entity.Store) error { r.byID[s.ID] = s; return nil }
func (r *fakeStoreRepo) GetByID(id string) (*entity.Store, error) {
	return r.byID[id], nil
}
func (r *fakeStoreRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Store, error) {
	return nil, nil
}

type fakeCustomerRepo struct {
	byID map[string]*entity.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{byID: make(map[string]*entity.Customer)}
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error { r.byID[c.ID] = c; return nil }
func (r *fakeCustomerRepo) Update(c *entity.Customer) error { r.byID[c.ID] = c; return nil }
func (r *fakeCustomerRepo) Delete(id string) error          { delete(r.byID, id); return nil }
func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return r.byID[id], nil
}
func (r *fakeCustomerRepo) GetByCompanyAndNIF(companyID, nif string) (*entity.Customer, error) {
	return nil, nil
}
func (r *fakeCustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	return nil, nil
}

type fakeProductRepo struct {
	byID map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) Create(p *entity.Product) error { r.byID[p.ID] = p; return nil }
func (r *fakeProductRepo) Update(p *entity.Product) error { r.byID[p.ID] = p; return nil }
func (r *fakeProductRepo) Delete(id string) error         { delete(r.byID, id); return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.byID[id], nil
}
func (r *fakeProductRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

// fakeRoleResolver resuelve roles desde un mapa estático de usuarios.
type fakeRoleResolver struct {
	byUser map[string]entity.RoleSet
	err    error
}

func (r *fakeRoleResolver) ResolveRoles(ctx context.Context, userID string) (entity.RoleSet, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byUser[userID], nil
}

// fakeAuditSink acumula entradas; err inyecta un fallo de registro.
type fakeAuditSink struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (s *fakeAuditSink) Record(ctx context.Context, entry AuditEntry) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeAuditSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}

// memNumberGenerator cumple el contrato del puerto con un contador por ámbito
// protegido por mutex: el equivalente en memoria de la transacción atómica
// del generador real.
type memNumberGenerator struct {
	mu       sync.Mutex
	counters map[string]int
	calls    int
	err      error
}

func newMemNumberGenerator() *memNumberGenerator {
	return &memNumberGenerator{counters: make(map[string]int)}
}

func (g *memNumberGenerator) Next(ctx context.Context, companyID, storeID string, year int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	key := fmt.Sprintf("%s|%s|%d", companyID, storeID, year)
	g.counters[key]++
	return fiscal.FormatInvoiceNumber(year, g.counters[key]), nil
}

// stuckNumberGenerator devuelve siempre el mismo número: simula la anomalía
// de datos fuera de banda que agota el reintento defensivo de la emisión.
type stuckNumberGenerator struct {
	number string
	calls  int
}

func (g *stuckNumberGenerator) Next(ctx context.Context, companyID, storeID string, year int) (string, error) {
	g.calls++
	return g.number, nil
}
